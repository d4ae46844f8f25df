package models

import (
	"fmt"
	"strings"
	"time"
)

// ResumeDocument is one uploaded resume held for the session: the original
// bytes plus the extracted plain text. Content is always non-empty for a
// document that made it into the store.
type ResumeDocument struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	LastModified time.Time `json:"lastModified"`
	Data         []byte    `json:"-"`
	Content      string    `json:"-"`
}

// DocumentID derives the stable identity of an upload. Re-uploading a file
// with the same name and modification time replaces the prior entry.
func DocumentID(fileName string, lastModified time.Time) string {
	return fmt.Sprintf("%s-%d", fileName, lastModified.UnixMilli())
}

// ScoreExplanations carries a one-sentence rationale per numeric score.
type ScoreExplanations struct {
	Overall             string `json:"overall"`
	SkillMatch          string `json:"skillMatch"`
	ExperienceRelevance string `json:"experienceRelevance"`
	EducationFit        string `json:"educationFit"`
	SoftSkills          string `json:"softSkills"`
	TechnicalSkills     string `json:"technicalSkills"`
}

// AnalysisReport is the structured output of one analysis call. All identity
// fields are AI-inferred and best-effort; every score lies in [0,100].
type AnalysisReport struct {
	CandidateName     string  `json:"candidateName"`
	CurrentTitle      string  `json:"currentTitle"`
	Location          string  `json:"location"`
	YearsOfExperience float64 `json:"yearsOfExperience"`

	OverallScore             float64 `json:"overallScore"`
	SkillMatchScore          float64 `json:"skillMatchScore"`
	ExperienceRelevanceScore float64 `json:"experienceRelevanceScore"`
	EducationFitScore        float64 `json:"educationFitScore"`
	SoftSkillsScore          float64 `json:"softSkillsScore"`
	TechnicalSkillsScore     float64 `json:"technicalSkillsScore"`

	Summary              string            `json:"summary"`
	Strengths            []string          `json:"strengths"`
	Gaps                 []string          `json:"gaps"`
	TopSkills            []string          `json:"topSkills"`
	SuggestedQuestions   []string          `json:"suggestedQuestions"`
	ScoreExplanations    ScoreExplanations `json:"scoreExplanations"`
	RankingJustification string            `json:"rankingJustification"`
}

// NewAnalysisReport validates a decoded report before it can enter the ranked
// set. Out-of-range scores and blank required text fields are rejected here;
// the provider enforces the schema at the wire boundary, this guards the
// in-memory invariant.
func NewAnalysisReport(raw AnalysisReport) (AnalysisReport, error) {
	scores := []struct {
		name  string
		value float64
	}{
		{"overallScore", raw.OverallScore},
		{"skillMatchScore", raw.SkillMatchScore},
		{"experienceRelevanceScore", raw.ExperienceRelevanceScore},
		{"educationFitScore", raw.EducationFitScore},
		{"softSkillsScore", raw.SoftSkillsScore},
		{"technicalSkillsScore", raw.TechnicalSkillsScore},
	}
	for _, s := range scores {
		if s.value < 0 || s.value > 100 {
			return AnalysisReport{}, fmt.Errorf("%s %.2f is outside [0,100]", s.name, s.value)
		}
	}

	required := []struct {
		name  string
		value string
	}{
		{"candidateName", raw.CandidateName},
		{"summary", raw.Summary},
		{"rankingJustification", raw.RankingJustification},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return AnalysisReport{}, fmt.Errorf("required field %s is blank", f.name)
		}
	}

	if raw.YearsOfExperience < 0 {
		return AnalysisReport{}, fmt.Errorf("yearsOfExperience %.2f is negative", raw.YearsOfExperience)
	}

	// Lists may legitimately be empty; normalize nil to empty so callers can
	// range and serialize without nil checks.
	if raw.Strengths == nil {
		raw.Strengths = []string{}
	}
	if raw.Gaps == nil {
		raw.Gaps = []string{}
	}
	if raw.TopSkills == nil {
		raw.TopSkills = []string{}
	}
	if raw.SuggestedQuestions == nil {
		raw.SuggestedQuestions = []string{}
	}

	return raw, nil
}

// RankedCandidate pairs a document with its analysis. TopPick is derived from
// session state when a view is built, never stored on the candidate.
type RankedCandidate struct {
	Document ResumeDocument `json:"document"`
	Analysis AnalysisReport `json:"analysis"`
	TopPick  bool           `json:"topPick"`
}

// SortKey selects the numeric score a ranked view orders by.
type SortKey string

const (
	SortOverall             SortKey = "overall"
	SortSkillMatch          SortKey = "skillMatch"
	SortExperienceRelevance SortKey = "experienceRelevance"
	SortEducationFit        SortKey = "educationFit"
	SortSoftSkills          SortKey = "softSkills"
	SortTechnicalSkills     SortKey = "technicalSkills"
)

// ParseSortKey maps a user-supplied sort name to a SortKey, defaulting to
// overall fit for an empty value.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortOverall:
		return SortOverall, nil
	case SortSkillMatch, SortExperienceRelevance, SortEducationFit, SortSoftSkills, SortTechnicalSkills:
		return SortKey(s), nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Score returns the report's value for the given sort key.
func (r AnalysisReport) Score(key SortKey) float64 {
	switch key {
	case SortSkillMatch:
		return r.SkillMatchScore
	case SortExperienceRelevance:
		return r.ExperienceRelevanceScore
	case SortEducationFit:
		return r.EducationFitScore
	case SortSoftSkills:
		return r.SoftSkillsScore
	case SortTechnicalSkills:
		return r.TechnicalSkillsScore
	default:
		return r.OverallScore
	}
}

// FilterMode restricts a ranked view.
type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterTopPicks FilterMode = "topPicks"
)

// ParseFilterMode maps a user-supplied filter name to a FilterMode, defaulting
// to all for an empty value.
func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterTopPicks:
		return FilterTopPicks, nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}
