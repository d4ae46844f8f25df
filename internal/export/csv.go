// Package export renders a ranked candidate list to downloadable formats.
// Rows always follow the order of the slice passed in; callers sort first.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/models"
)

// CSVFileName is the suggested download name for CSV exports.
const CSVFileName = "resume_rankings.csv"

var csvHeader = []string{
	"Rank",
	"Candidate Name",
	"Overall Score",
	"Skill Match",
	"Experience Relevance",
	"Education Fit",
	"Soft Skills",
	"Technical Skills",
	"Current Title",
	"Location",
	"Years of Experience",
	"Summary",
	"Top Skills",
	"Strengths",
	"Gaps",
	"File Name",
	"Top Pick",
}

// WriteCSV writes one row per candidate in the given order. Quoting and
// escaping follow RFC 4180 via encoding/csv, so free-text fields with commas,
// quotes, or newlines round-trip through spreadsheet tools.
func WriteCSV(w io.Writer, candidates []models.RankedCandidate) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, rc := range candidates {
		a := rc.Analysis
		row := []string{
			fmt.Sprintf("%d", i+1),
			a.CandidateName,
			formatScore(a.OverallScore),
			formatScore(a.SkillMatchScore),
			formatScore(a.ExperienceRelevanceScore),
			formatScore(a.EducationFitScore),
			formatScore(a.SoftSkillsScore),
			formatScore(a.TechnicalSkillsScore),
			a.CurrentTitle,
			a.Location,
			formatScore(a.YearsOfExperience),
			a.Summary,
			strings.Join(a.TopSkills, ", "),
			strings.Join(a.Strengths, "; "),
			strings.Join(a.Gaps, "; "),
			rc.Document.FileName,
			formatBool(rc.TopPick),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatScore(v float64) string {
	// Whole numbers render without a decimal tail.
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
