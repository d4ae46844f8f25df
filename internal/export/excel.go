package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/models"
)

// XLSXFileName is the suggested download name for workbook exports.
const XLSXFileName = "resume_rankings.xlsx"

// WriteXLSX generates a workbook with the ranked results: a summary sheet
// with run statistics, the ranked candidate table with score color-coding,
// and a detailed sheet carrying the per-score rationale text.
func WriteXLSX(w io.Writer, candidates []models.RankedCandidate, jobDescription string, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "Summary"
	candidatesSheet := "Ranked Candidates"
	detailsSheet := "Detailed Analysis"

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(candidatesSheet)
	f.NewSheet(detailsSheet)

	if err := buildSummarySheet(f, summarySheet, candidates, jobDescription, now); err != nil {
		return fmt.Errorf("build summary sheet: %w", err)
	}
	if err := buildCandidatesSheet(f, candidatesSheet, candidates); err != nil {
		return fmt.Errorf("build ranked candidates sheet: %w", err)
	}
	if err := buildDetailsSheet(f, detailsSheet, candidates); err != nil {
		return fmt.Errorf("build detailed analysis sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

var borderAllSides = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    borderAllSides,
	})
}

// scoreBandStyle returns the fill for an overall score band: green for
// excellent, yellow for good, orange for fair, red below that.
func scoreBandStyle(f *excelize.File, score float64) (int, error) {
	var color string
	switch {
	case score >= 90:
		color = "C6EFCE"
	case score >= 70:
		color = "FFEB9C"
	case score >= 50:
		color = "FFC7CE"
	default:
		color = "FF9999"
	}
	return f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Border: borderAllSides,
	})
}

func buildSummarySheet(f *excelize.File, sheet string, candidates []models.RankedCandidate, jobDescription string, now time.Time) error {
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 60)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Resume Ranking Report")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), titleStyle)
	f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	setLabelled := func(label string, value interface{}) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), label)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), value)
		row++
	}

	setLabelled("Generated:", now.Format("2006-01-02 15:04:05"))
	setLabelled("Candidates Ranked:", len(candidates))
	setLabelled("Job Description:", summarize(jobDescription, 500))
	row++

	if len(candidates) == 0 {
		return nil
	}

	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Statistics:")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), titleStyle)
	f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row++

	var excellent, good, fair, poor int
	var total float64
	min, max := candidates[0].Analysis.OverallScore, candidates[0].Analysis.OverallScore
	topPicks := 0
	for _, rc := range candidates {
		score := rc.Analysis.OverallScore
		total += score
		switch {
		case score >= 90:
			excellent++
		case score >= 70:
			good++
		case score >= 50:
			fair++
		default:
			poor++
		}
		if score < min {
			min = score
		}
		if score > max {
			max = score
		}
		if rc.TopPick {
			topPicks++
		}
	}

	setLabelled("Excellent (90-100):", excellent)
	setLabelled("Good (70-89):", good)
	setLabelled("Fair (50-69):", fair)
	setLabelled("Poor (<50):", poor)
	setLabelled("Average Overall Score:", fmt.Sprintf("%.2f", total/float64(len(candidates))))
	setLabelled("Highest Overall Score:", fmt.Sprintf("%.2f", max))
	setLabelled("Lowest Overall Score:", fmt.Sprintf("%.2f", min))
	setLabelled("Top Picks:", topPicks)

	return nil
}

func buildCandidatesSheet(f *excelize.File, sheet string, candidates []models.RankedCandidate) error {
	widths := []float64{8, 25, 14, 14, 20, 14, 14, 16, 25, 18, 8, 30, 12}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	hdr, err := headerStyle(f)
	if err != nil {
		return err
	}

	headers := []string{
		"Rank", "Candidate", "Overall", "Skill Match", "Experience Relevance",
		"Education Fit", "Soft Skills", "Technical Skills", "Current Title",
		"Location", "YoE", "File Name", "Top Pick",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, hdr)
	}

	for i, rc := range candidates {
		row := i + 2
		a := rc.Analysis
		values := []interface{}{
			i + 1, a.CandidateName, a.OverallScore, a.SkillMatchScore,
			a.ExperienceRelevanceScore, a.EducationFitScore, a.SoftSkillsScore,
			a.TechnicalSkillsScore, a.CurrentTitle, a.Location,
			a.YearsOfExperience, rc.Document.FileName, formatBool(rc.TopPick),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}

		band, err := scoreBandStyle(f, a.OverallScore)
		if err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(values), row)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), last, band)
	}

	if len(candidates) > 0 {
		f.AutoFilter(sheet, fmt.Sprintf("A1:M%d", len(candidates)+1), []excelize.AutoFilterOptions{})
	}
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	return nil
}

func buildDetailsSheet(f *excelize.File, sheet string, candidates []models.RankedCandidate) error {
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 25)
	f.SetColWidth(sheet, "C", "C", 24)
	f.SetColWidth(sheet, "D", "D", 70)

	hdr, err := headerStyle(f)
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    borderAllSides,
	})
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Candidate", "Category", "Detail"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, hdr)
	}

	row := 2
	writeDetail := func(rank int, name, category, detail string) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rank)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), category)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), detail)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), wrapStyle)
		f.SetRowHeight(sheet, row, 45)
		row++
	}

	for i, rc := range candidates {
		rank := i + 1
		a := rc.Analysis
		writeDetail(rank, a.CandidateName, "Summary", a.Summary)
		writeDetail(rank, a.CandidateName, "Ranking Justification", a.RankingJustification)
		writeDetail(rank, a.CandidateName, "Overall Score", a.ScoreExplanations.Overall)
		writeDetail(rank, a.CandidateName, "Skill Match", a.ScoreExplanations.SkillMatch)
		writeDetail(rank, a.CandidateName, "Experience Relevance", a.ScoreExplanations.ExperienceRelevance)
		writeDetail(rank, a.CandidateName, "Education Fit", a.ScoreExplanations.EducationFit)
		writeDetail(rank, a.CandidateName, "Soft Skills", a.ScoreExplanations.SoftSkills)
		writeDetail(rank, a.CandidateName, "Technical Skills", a.ScoreExplanations.TechnicalSkills)
		writeDetail(rank, a.CandidateName, "Strengths", strings.Join(a.Strengths, "; "))
		writeDetail(rank, a.CandidateName, "Gaps", strings.Join(a.Gaps, "; "))
		writeDetail(rank, a.CandidateName, "Suggested Questions", strings.Join(a.SuggestedQuestions, " | "))
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	return nil
}

func summarize(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
