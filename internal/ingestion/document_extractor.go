// Package ingestion turns uploaded resume files into in-memory documents:
// text extraction for the supported formats plus the session document store.
package ingestion

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/apperrors"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/models"
)

// IncomingFile is one file as received from the upload boundary.
type IncomingFile struct {
	Name         string
	LastModified time.Time
	Data         []byte
}

// Process extracts text from an incoming file and builds the session
// document. Unsupported extensions yield CodeUnsupportedFormat (the caller
// skips the file and continues); decode failures of a recognized format
// yield CodeExtractionFailed.
func Process(f IncomingFile) (models.ResumeDocument, error) {
	content, err := ExtractText(f.Name, f.Data)
	if err != nil {
		return models.ResumeDocument{}, err
	}

	return models.ResumeDocument{
		ID:           models.DocumentID(f.Name, f.LastModified),
		FileName:     f.Name,
		LastModified: f.LastModified,
		Data:         f.Data,
		Content:      content,
	}, nil
}

// ExtractText converts a resume file into plain UTF-8 text.
func ExtractText(fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		return "", apperrors.Newf(apperrors.CodeUnsupportedFormat, "unsupported file type %q", ext)
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExtractionFailed, fmt.Sprintf("extract %s", fileName), err)
	}

	if strings.TrimSpace(text) == "" {
		return "", apperrors.Newf(apperrors.CodeExtractionFailed, "no extractable text in %s", fileName)
	}

	return text, nil
}

// extractPDF decodes each page in order. Within a page the recognized text
// tokens are joined with single spaces; pages are concatenated with no
// separator, matching how the ranked view has always seen resume text.
func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs; turn that into a
	// regular decode error so a corrupt file stays a per-file failure.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf decode panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		tokens := page.Content().Text
		for j, token := range tokens {
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(token.S)
		}
	}

	return sb.String(), nil
}

// extractDOCX pulls the raw text run out of the document body, discarding all
// formatting.
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	return docxTextFromXML(doc.Editable().GetContent())
}

// docxTextFromXML walks the WordprocessingML body collecting the character
// data of w:t runs. Paragraph ends become newlines.
func docxTextFromXML(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))
	decoder.Strict = false

	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
