package ranker

import (
	"sort"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/models"
)

// Ranked returns a view over the current ranked set: a copy sorted by the
// given score key, highest first, then narrowed by the filter. The stored
// set is never reordered, so switching keys is always derived from the same
// underlying records.
func (p *Pipeline) Ranked(key models.SortKey, filter models.FilterMode) []models.RankedCandidate {
	p.mu.RLock()
	out := make([]models.RankedCandidate, len(p.ranked))
	for i, rc := range p.ranked {
		_, picked := p.topPicks[rc.Document.ID]
		rc.TopPick = picked
		out[i] = rc
	}
	p.mu.RUnlock()

	// Stable sort keeps equal scores in stored order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Analysis.Score(key) > out[j].Analysis.Score(key)
	})

	if filter == models.FilterTopPicks {
		picked := out[:0]
		for _, rc := range out {
			if rc.TopPick {
				picked = append(picked, rc)
			}
		}
		out = picked
	}

	return out
}

// ToggleTopPick flips the top-pick flag of a ranked candidate. It reports
// the new state and whether the id named a ranked candidate at all.
func (p *Pipeline) ToggleTopPick(id string) (picked, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, rc := range p.ranked {
		if rc.Document.ID == id {
			ok = true
			break
		}
	}
	if !ok {
		return false, false
	}

	if _, onList := p.topPicks[id]; onList {
		delete(p.topPicks, id)
		return false, true
	}
	p.topPicks[id] = struct{}{}
	return true, true
}
