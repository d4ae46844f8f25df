package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/apperrors"
)

type fakeGenerator struct {
	response   string
	err        error
	lastPrompt string
	lastSchema *genai.Schema
	calls      int
}

func (f *fakeGenerator) GenerateStructured(_ context.Context, prompt string, schema *genai.Schema) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastSchema = schema
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func validResponse(t *testing.T, mutate func(map[string]any)) string {
	t.Helper()

	payload := map[string]any{
		"candidateName":            "Jane Smith",
		"currentTitle":             "Senior Backend Engineer",
		"location":                 "Berlin, Germany",
		"yearsOfExperience":        8,
		"overallScore":             87,
		"skillMatchScore":          90,
		"experienceRelevanceScore": 85,
		"educationFitScore":        80,
		"softSkillsScore":          75,
		"technicalSkillsScore":     92,
		"summary":                  "Strong backend engineer with directly relevant experience.",
		"strengths":                []string{"Go", "Distributed systems"},
		"gaps":                     []string{"No Kubernetes exposure"},
		"topSkills":                []string{"Performance tuning"},
		"suggestedQuestions":       []string{"Describe a system you scaled."},
		"scoreExplanations": map[string]any{
			"overall":             "Close overall match.",
			"skillMatch":          "Covers most required skills.",
			"experienceRelevance": "Direct backend experience.",
			"educationFit":        "Degree matches requirement.",
			"softSkills":          "Evidence of collaboration.",
			"technicalSkills":     "Deep core-stack expertise.",
		},
		"rankingJustification": "Ranks near the top due to skill coverage.",
	}
	if mutate != nil {
		mutate(payload)
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(data)
}

func TestAnalyzeSuccess(t *testing.T) {
	gen := &fakeGenerator{response: validResponse(t, nil)}
	a := NewAnalyzer(gen, zap.NewNop(), 0)

	report, err := a.Analyze(context.Background(), "We need a Go engineer.", "Jane Smith. Go, PostgreSQL.")
	require.NoError(t, err)

	assert.Equal(t, "Jane Smith", report.CandidateName)
	assert.Equal(t, 87.0, report.OverallScore)
	assert.Equal(t, []string{"Go", "Distributed systems"}, report.Strengths)
	assert.Equal(t, "Close overall match.", report.ScoreExplanations.Overall)
	assert.Equal(t, 1, gen.calls)
}

func TestAnalyzePromptContents(t *testing.T) {
	gen := &fakeGenerator{response: validResponse(t, nil)}
	a := NewAnalyzer(gen, zap.NewNop(), 0)

	_, err := a.Analyze(context.Background(), "JOB-DESCRIPTION-MARKER", "RESUME-TEXT-MARKER")
	require.NoError(t, err)

	assert.Contains(t, gen.lastPrompt, "JOB-DESCRIPTION-MARKER")
	assert.Contains(t, gen.lastPrompt, "RESUME-TEXT-MARKER")
	// Bias-free and contextual-matching mandates travel with every request.
	assert.Contains(t, gen.lastPrompt, "identity signal")
	assert.Contains(t, gen.lastPrompt, "not by keyword overlap alone")

	require.NotNil(t, gen.lastSchema)
	assert.Contains(t, gen.lastSchema.Required, "candidateName")
	assert.Contains(t, gen.lastSchema.Required, "rankingJustification")
	assert.Len(t, gen.lastSchema.Required, 17)
}

func TestAnalyzeServiceFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	a := NewAnalyzer(gen, zap.NewNop(), 0)

	_, err := a.Analyze(context.Background(), "job", "resume")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAnalysisFailed, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAnalyzeMalformedResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "not json",
			response: "I am sorry, I cannot help with that.",
		},
		{
			name:     "missing required field",
			response: validResponse(t, func(p map[string]any) { delete(p, "candidateName") }),
		},
		{
			name:     "score above range",
			response: validResponse(t, func(p map[string]any) { p["overallScore"] = 180 }),
		},
		{
			name:     "score below range",
			response: validResponse(t, func(p map[string]any) { p["softSkillsScore"] = -5 }),
		},
		{
			name:     "wrong type for score",
			response: validResponse(t, func(p map[string]any) { p["skillMatchScore"] = "ninety" }),
		},
		{
			name:     "missing explanation key",
			response: validResponse(t, func(p map[string]any) { p["scoreExplanations"] = map[string]any{"overall": "x"} }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: tt.response}
			a := NewAnalyzer(gen, zap.NewNop(), 0)

			_, err := a.Analyze(context.Background(), "job", "resume")
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeMalformedResponse, apperrors.CodeOf(err))
		})
	}
}

func TestDecodeReportFieldNamesMatchWire(t *testing.T) {
	// The wire name overallScore maps straight onto the report with no
	// remapping step in between.
	report, err := decodeReport(validResponse(t, func(p map[string]any) { p["overallScore"] = 42 }))
	require.NoError(t, err)
	assert.Equal(t, 42.0, report.OverallScore)
}
