package ranker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/models"
)

// rankedPipeline builds a pipeline whose ranked set holds one candidate per
// entry, with scores taken from the given reports keyed by resume content.
func rankedPipeline(t *testing.T, reports map[string]models.AnalysisReport) *Pipeline {
	t.Helper()
	p, _ := newTestPipeline(func(ctx context.Context, _ string, resumeText string) (models.AnalysisReport, error) {
		r, ok := reports[resumeText]
		require.True(t, ok, "unexpected resume %q", resumeText)
		return r, nil
	})
	for content := range reports {
		addDoc(p, content+".pdf", content)
	}
	p.SetJobDescription("Go engineer")
	require.NoError(t, p.Analyze(context.Background()))
	return p
}

func names(ranked []models.RankedCandidate) []string {
	out := make([]string, len(ranked))
	for i, rc := range ranked {
		out[i] = rc.Analysis.CandidateName
	}
	return out
}

func TestRankedSortsPerKey(t *testing.T) {
	alice := scoredReport("alice", 90)
	alice.SkillMatchScore = 40
	bob := scoredReport("bob", 70)
	bob.SkillMatchScore = 95
	carol := scoredReport("carol", 80)
	carol.SkillMatchScore = 60

	p := rankedPipeline(t, map[string]models.AnalysisReport{
		"alice": alice,
		"bob":   bob,
		"carol": carol,
	})

	assert.Equal(t, []string{"alice", "carol", "bob"},
		names(p.Ranked(models.SortOverall, models.FilterAll)))
	assert.Equal(t, []string{"bob", "carol", "alice"},
		names(p.Ranked(models.SortSkillMatch, models.FilterAll)))

	// Switching keys derives from the same stored set, so going back to the
	// first key reproduces the first ordering exactly.
	assert.Equal(t, []string{"alice", "carol", "bob"},
		names(p.Ranked(models.SortOverall, models.FilterAll)))
}

func TestRankedSortIsIdempotent(t *testing.T) {
	p := rankedPipeline(t, map[string]models.AnalysisReport{
		"alice": scoredReport("alice", 55),
		"bob":   scoredReport("bob", 85),
	})

	first := names(p.Ranked(models.SortOverall, models.FilterAll))
	second := names(p.Ranked(models.SortOverall, models.FilterAll))
	assert.Equal(t, first, second)
}

func TestRankedStableOnTies(t *testing.T) {
	p, _ := newTestPipeline(reportByContent)
	// All three land on the same score; stored order is completion-independent
	// insertion order of the document set.
	addDoc(p, "a.pdf", "first")
	addDoc(p, "b.pdf", "second")
	addDoc(p, "c.pdf", "third")
	p.SetJobDescription("Go engineer")
	require.NoError(t, p.Analyze(context.Background()))

	got := names(p.Ranked(models.SortOverall, models.FilterAll))
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestRankedTopPickFilter(t *testing.T) {
	p := rankedPipeline(t, map[string]models.AnalysisReport{
		"alice": scoredReport("alice", 90),
		"bob":   scoredReport("bob", 80),
		"carol": scoredReport("carol", 70),
	})

	all := p.Ranked(models.SortOverall, models.FilterAll)
	require.Len(t, all, 3)

	// Pick the top and bottom candidates.
	for _, rc := range []models.RankedCandidate{all[0], all[2]} {
		picked, ok := p.ToggleTopPick(rc.Document.ID)
		require.True(t, ok)
		require.True(t, picked)
	}

	picks := p.Ranked(models.SortOverall, models.FilterTopPicks)
	assert.Equal(t, []string{"alice", "carol"}, names(picks),
		"filter narrows after sorting, keeping relative order")
	for _, rc := range picks {
		assert.True(t, rc.TopPick)
	}

	// Filtering an already narrowed view is a no-op.
	again := p.Ranked(models.SortOverall, models.FilterTopPicks)
	assert.Equal(t, names(picks), names(again))

	// The unfiltered view still carries everyone, flags included.
	all = p.Ranked(models.SortOverall, models.FilterAll)
	require.Len(t, all, 3)
	assert.True(t, all[0].TopPick)
	assert.False(t, all[1].TopPick)
	assert.True(t, all[2].TopPick)
}

func TestToggleTopPick(t *testing.T) {
	p := rankedPipeline(t, map[string]models.AnalysisReport{
		"alice": scoredReport("alice", 90),
	})
	id := p.Ranked(models.SortOverall, models.FilterAll)[0].Document.ID

	picked, ok := p.ToggleTopPick(id)
	require.True(t, ok)
	assert.True(t, picked)

	picked, ok = p.ToggleTopPick(id)
	require.True(t, ok)
	assert.False(t, picked, "toggling twice restores the original state")

	_, ok = p.ToggleTopPick("no-such-candidate")
	assert.False(t, ok)
}

func TestRankedEmptyBeforeFirstRun(t *testing.T) {
	p, _ := newTestPipeline(reportByContent)
	assert.Empty(t, p.Ranked(models.SortOverall, models.FilterAll))
	assert.Empty(t, p.Ranked(models.SortOverall, models.FilterTopPicks))

	_, ok := p.ToggleTopPick("anything")
	assert.False(t, ok, "nothing is rankable before a run completes")
}
