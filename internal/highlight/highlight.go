// Package highlight marks occurrences of job-description terms inside resume
// text so a reviewer can see what the ranking latched onto.
package highlight

import (
	"html"
	"strings"
)

// minTermLength filters out stopword-sized tokens; only longer words from the
// job description count as highlightable terms.
const minTermLength = 4

// trailingPunct is trimmed from the end of a resume token before matching, so
// "Kubernetes," still matches the term "kubernetes".
const trailingPunct = ".,;:\"()?![]{}"

// Terms extracts the highlightable vocabulary of a job description:
// whitespace-separated tokens of at least four characters, lowercased. Order
// is not meaningful; the result is a membership set.
func Terms(jobDescription string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, tok := range strings.Fields(jobDescription) {
		tok = strings.ToLower(strings.TrimRight(tok, trailingPunct))
		if len(tok) >= minTermLength {
			terms[tok] = struct{}{}
		}
	}
	return terms
}

// Span is a run of resume text that is either entirely matched or entirely
// unmatched. Concatenating the Text of all spans reproduces the input
// exactly, whitespace included.
type Span struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// Annotate splits resume text into spans against the term set. Tokens whose
// lowercased, punctuation-trimmed form is in the set become matched spans;
// everything else, separators included, is merged into unmatched spans.
func Annotate(resumeText string, terms map[string]struct{}) []Span {
	if resumeText == "" {
		return nil
	}

	var spans []Span
	emit := func(text string, matched bool) {
		if text == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Matched == matched {
			spans[n-1].Text += text
			return
		}
		spans = append(spans, Span{Text: text, Matched: matched})
	}

	rest := resumeText
	for rest != "" {
		// Leading separator run.
		i := 0
		for i < len(rest) && isSpace(rest[i]) {
			i++
		}
		emit(rest[:i], false)
		rest = rest[i:]
		if rest == "" {
			break
		}

		// Next token.
		j := 0
		for j < len(rest) && !isSpace(rest[j]) {
			j++
		}
		tok := rest[:j]
		key := strings.ToLower(strings.TrimRight(tok, trailingPunct))
		_, matched := terms[key]
		if len(key) < minTermLength {
			matched = false
		}
		emit(tok, matched)
		rest = rest[j:]
	}

	return spans
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// HTML renders annotated text as an escaped HTML fragment with matched spans
// wrapped in <mark> tags.
func HTML(resumeText, jobDescription string) string {
	spans := Annotate(resumeText, Terms(jobDescription))
	var b strings.Builder
	for _, s := range spans {
		if s.Matched {
			b.WriteString("<mark>")
			b.WriteString(html.EscapeString(s.Text))
			b.WriteString("</mark>")
		} else {
			b.WriteString(html.EscapeString(s.Text))
		}
	}
	return b.String()
}
