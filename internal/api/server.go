// Package api exposes the ranking pipeline over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/apperrors"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/export"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/highlight"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/ingestion"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/models"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/ranker"
)

// Server handles HTTP requests against one ranking session.
type Server struct {
	pipeline *ranker.Pipeline
	logger   *zap.Logger
	maxBytes int64
}

// NewServer creates the API server. maxBytes bounds the multipart upload
// memory budget.
func NewServer(pipeline *ranker.Pipeline, logger *zap.Logger, maxBytes int64) *Server {
	return &Server{
		pipeline: pipeline,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// Router returns the HTTP router.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /documents", s.handleUpload)
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("DELETE /documents/{id}", s.handleRemoveDocument)
	mux.HandleFunc("GET /documents/{id}/file", s.handleDocumentFile)
	mux.HandleFunc("GET /documents/{id}/text", s.handleDocumentText)

	mux.HandleFunc("PUT /job", s.handleSetJob)
	mux.HandleFunc("GET /job", s.handleGetJob)

	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("DELETE /analyze", s.handleCancelAnalyze)
	mux.HandleFunc("GET /status", s.handleStatus)

	mux.HandleFunc("GET /results", s.handleResults)
	mux.HandleFunc("POST /results/{id}/top-pick", s.handleToggleTopPick)

	mux.HandleFunc("GET /export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /export/xlsx", s.handleExportXLSX)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.loggingMiddleware(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "resume-ranker",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /documents":              "Upload resume files (PDF, DOCX)",
			"GET /documents":               "List uploaded documents",
			"DELETE /documents/{id}":       "Remove a document",
			"GET /documents/{id}/file":     "Download the original file",
			"GET /documents/{id}/text":     "Extracted text, ?highlight=1 for annotated HTML",
			"PUT /job":                     "Set the job description",
			"POST /analyze":                "Start a ranking run",
			"DELETE /analyze":              "Cancel the running analysis",
			"GET /status":                  "Run progress",
			"GET /results":                 "Ranked candidates, ?sort= and ?filter=",
			"POST /results/{id}/top-pick":  "Toggle the top-pick flag",
			"GET /export/csv":              "Download ranked results as CSV",
			"GET /export/xlsx":             "Download ranked results as a workbook",
			"GET /health":                  "Health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// uploadFileResult is the per-file outcome reported back to the client.
type uploadFileResult struct {
	FileName   string `json:"fileName"`
	DocumentID string `json:"documentId,omitempty"`
	Replaced   bool   `json:"replaced,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorCode  string `json:"errorCode,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	// Optional, parallel to files: epoch millis of each file's modification
	// time. Missing entries fall back to the upload time.
	modTimes := r.MultipartForm.Value["lastModified"]

	incoming := make([]ingestion.IncomingFile, 0, len(headers))
	for i, fh := range headers {
		data, err := readMultipartFile(fh)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s: %v", fh.Filename, err))
			return
		}
		incoming = append(incoming, ingestion.IncomingFile{
			Name:         filepath.Base(fh.Filename),
			LastModified: parseModTime(modTimes, i),
			Data:         data,
		})
	}

	results := s.pipeline.AddFiles(incoming)

	out := make([]uploadFileResult, len(results))
	accepted := 0
	for i, res := range results {
		out[i] = uploadFileResult{
			FileName:   res.FileName,
			DocumentID: res.DocumentID,
			Replaced:   res.Replaced,
		}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
			out[i].ErrorCode = string(apperrors.CodeOf(res.Err))
			continue
		}
		accepted++
	}

	status := http.StatusOK
	if accepted == 0 {
		status = http.StatusUnprocessableEntity
	}
	s.respondJSON(w, status, map[string]interface{}{
		"accepted": accepted,
		"files":    out,
	})
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func parseModTime(values []string, i int) time.Time {
	if i < len(values) {
		if ms, err := strconv.ParseInt(values[i], 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
	}
	return time.Now()
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.pipeline.Documents()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(docs),
		"documents": docs,
	})
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.pipeline.RemoveDocument(id) {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"removed": id})
}

func (s *Server) handleDocumentFile(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.pipeline.Document(r.PathValue("id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}

	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(doc.FileName)) {
	case ".pdf":
		contentType = "application/pdf"
	case ".docx":
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.Write(doc.Data)
}

func (s *Server) handleDocumentText(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.pipeline.Document(r.PathValue("id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}

	if r.URL.Query().Get("highlight") == "1" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, highlight.HTML(doc.Content, s.pipeline.JobDescription()))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, doc.Content)
}

type jobRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSetJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	s.pipeline.SetJobDescription(req.Text)
	s.respondJSON(w, http.StatusOK, map[string]int{"length": len(req.Text)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, jobRequest{Text: s.pipeline.JobDescription()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	runID, err := s.pipeline.StartRun()
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

func (s *Server) handleCancelAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.pipeline.CancelRun() {
		s.respondError(w, http.StatusConflict, "no analysis run in progress")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.pipeline.Status())
}

func (s *Server) rankedView(r *http.Request) ([]models.RankedCandidate, error) {
	key, err := models.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		return nil, err
	}
	filter, err := models.ParseFilterMode(r.URL.Query().Get("filter"))
	if err != nil {
		return nil, err
	}
	return s.pipeline.Ranked(key, filter), nil
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	ranked, err := s.rankedView(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(ranked),
		"candidates": ranked,
	})
}

func (s *Server) handleToggleTopPick(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	picked, ok := s.pipeline.ToggleTopPick(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "no ranked candidate with that id")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documentId": id,
		"topPick":    picked,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ranked, err := s.rankedView(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(ranked) == 0 {
		s.respondError(w, http.StatusNotFound, "no ranked results to export")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFileName))
	if err := export.WriteCSV(w, ranked); err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	ranked, err := s.rankedView(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(ranked) == 0 {
		s.respondError(w, http.StatusNotFound, "no ranked results to export")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.XLSXFileName))
	if err := export.WriteXLSX(w, ranked, s.pipeline.JobDescription(), time.Now()); err != nil {
		s.logger.Error("xlsx export failed", zap.Error(err))
	}
}

// respondPipelineError maps run preconditions and service state to HTTP
// status codes.
func (s *Server) respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ranker.ErrRunInProgress):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ranker.ErrNoDocuments), errors.Is(err, ranker.ErrBlankJobDescription):
		s.respondError(w, http.StatusPreconditionFailed, err.Error())
	case apperrors.HasCode(err, apperrors.CodeConfiguration):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	case apperrors.HasCode(err, apperrors.CodeAnalysisFailed), apperrors.HasCode(err, apperrors.CodeMalformedResponse):
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
