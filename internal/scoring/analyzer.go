// Package scoring implements the analysis client: it turns one (job
// description, resume text) pair into a validated AnalysisReport by calling
// the structured-completion service.
package scoring

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/apperrors"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/models"
)

//go:embed analysis_schema.json
var analysisSchemaJSON string

// contentGenerator is the slice of the LLM client the analyzer needs.
type contentGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// Analyzer evaluates resumes against a job description.
type Analyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	timeout   time.Duration
}

// NewAnalyzer creates an analyzer. A zero timeout disables the per-call
// deadline.
func NewAnalyzer(generator contentGenerator, logger *zap.Logger, timeout time.Duration) *Analyzer {
	return &Analyzer{
		generator: generator,
		logger:    logger,
		timeout:   timeout,
	}
}

// Analyze runs one analysis call. Service failures surface as
// CodeAnalysisFailed; a response that does not conform to the schema or the
// score-range invariant surfaces as CodeMalformedResponse. No retries.
func (a *Analyzer) Analyze(ctx context.Context, jobDescription, resumeText string) (models.AnalysisReport, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	prompt := buildPrompt(jobDescription, resumeText)

	a.logger.Debug("analysis request",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("resume_chars", len(resumeText)),
	)

	raw, err := a.generator.GenerateStructured(ctx, prompt, responseSchema)
	if err != nil {
		return models.AnalysisReport{}, apperrors.Wrap(apperrors.CodeAnalysisFailed, "completion call failed", err)
	}

	report, err := decodeReport(raw)
	if err != nil {
		a.logger.Debug("malformed analysis response", zap.Error(err), zap.Int("response_chars", len(raw)))
		return models.AnalysisReport{}, err
	}

	return report, nil
}

// decodeReport validates the raw response against the embedded schema and
// builds the report through its validating constructor.
func decodeReport(raw string) (models.AnalysisReport, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(analysisSchemaJSON),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return models.AnalysisReport{}, apperrors.Wrap(apperrors.CodeMalformedResponse, "response is not valid JSON", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return models.AnalysisReport{}, apperrors.Newf(apperrors.CodeMalformedResponse,
			"response does not match schema: %s", strings.Join(details, "; "))
	}

	var decoded models.AnalysisReport
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return models.AnalysisReport{}, apperrors.Wrap(apperrors.CodeMalformedResponse, "decode response", err)
	}

	report, err := models.NewAnalysisReport(decoded)
	if err != nil {
		return models.AnalysisReport{}, apperrors.Wrap(apperrors.CodeMalformedResponse, "invalid analysis record", err)
	}

	return report, nil
}

// buildPrompt assembles the analysis instruction around the two texts. The
// instruction mandates bias-free scoring and contextual matching.
func buildPrompt(jobDescription, resumeText string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert HR assistant. Analyze the resume below against the job description and return a structured JSON analysis.\n\n")
	sb.WriteString("Scoring rules:\n")
	sb.WriteString("- Every score is a number from 0 to 100.\n")
	sb.WriteString("- Match skills and experience by meaning and context, not by keyword overlap alone; equivalent technologies and transferable experience count.\n")
	sb.WriteString("- Never let the candidate's name, gender, ethnicity, age, photos, or any other identity signal influence any numeric score.\n")
	sb.WriteString("- Identify standout skills or experiences that are not required by the job description but would be valuable for the role.\n")
	sb.WriteString("- Provide a one-sentence explanation for each score and a one-sentence justification for where this candidate should rank.\n\n")

	sb.WriteString("Job Description:\n---\n")
	sb.WriteString(jobDescription)
	sb.WriteString("\n---\n\n")

	sb.WriteString("Resume Content:\n---\n")
	sb.WriteString(resumeText)
	sb.WriteString("\n---\n\n")

	sb.WriteString("Return only a JSON object that strictly follows the response schema. No introductory text, markdown formatting, or backticks.\n")

	return sb.String()
}

// responseSchema is the authoritative output contract sent with every
// request. Field names match the AnalysisReport JSON tags exactly; there is
// no remapping between wire and memory.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"candidateName": {
			Type:        genai.TypeString,
			Description: "The full name of the candidate.",
		},
		"currentTitle": {
			Type:        genai.TypeString,
			Description: "The candidate's current or most recent job title.",
		},
		"location": {
			Type:        genai.TypeString,
			Description: "The candidate's location as stated on the resume, or an empty string.",
		},
		"yearsOfExperience": {
			Type:        genai.TypeNumber,
			Description: "Estimated total years of relevant professional experience.",
		},
		"overallScore": {
			Type:        genai.TypeNumber,
			Description: "A score from 0 to 100 for how well the resume matches the job description overall.",
		},
		"skillMatchScore": {
			Type:        genai.TypeNumber,
			Description: "A score from 0 to 100 for coverage of the required skills.",
		},
		"experienceRelevanceScore": {
			Type:        genai.TypeNumber,
			Description: "A score from 0 to 100 for how relevant the candidate's experience is to the role.",
		},
		"educationFitScore": {
			Type:        genai.TypeNumber,
			Description: "A score from 0 to 100 for how well the candidate's education fits the requirements.",
		},
		"softSkillsScore": {
			Type:        genai.TypeNumber,
			Description: "A score from 0 to 100 for soft skills evident from the resume.",
		},
		"technicalSkillsScore": {
			Type:        genai.TypeNumber,
			Description: "A score from 0 to 100 for depth of technical skills relevant to the role.",
		},
		"summary": {
			Type:        genai.TypeString,
			Description: "A 2-3 sentence summary of the candidate's profile and suitability.",
		},
		"strengths": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Key strengths of the candidate for this role.",
		},
		"gaps": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Missing qualifications or potential weaknesses relative to the job description.",
		},
		"topSkills": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "1-3 standout skills or experiences not required by the job description but valuable for the role.",
		},
		"suggestedQuestions": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Insightful interview questions based on the resume and job description.",
		},
		"scoreExplanations": {
			Type:        genai.TypeObject,
			Description: "A one-sentence explanation for each numeric score.",
			Properties: map[string]*genai.Schema{
				"overall":             {Type: genai.TypeString},
				"skillMatch":          {Type: genai.TypeString},
				"experienceRelevance": {Type: genai.TypeString},
				"educationFit":        {Type: genai.TypeString},
				"softSkills":          {Type: genai.TypeString},
				"technicalSkills":     {Type: genai.TypeString},
			},
			Required: []string{"overall", "skillMatch", "experienceRelevance", "educationFit", "softSkills", "technicalSkills"},
		},
		"rankingJustification": {
			Type:        genai.TypeString,
			Description: "One sentence justifying where this candidate should rank relative to a typical applicant pool.",
		},
	},
	Required: []string{
		"candidateName", "currentTitle", "location", "yearsOfExperience",
		"overallScore", "skillMatchScore", "experienceRelevanceScore",
		"educationFitScore", "softSkillsScore", "technicalSkillsScore",
		"summary", "strengths", "gaps", "topSkills", "suggestedQuestions",
		"scoreExplanations", "rankingJustification",
	},
}
