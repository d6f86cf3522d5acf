package usecase

import (
	"sort"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

const defaultResultLimit = 5

// rankResults keeps entries scoring above minScore, orders them by score
// descending with id ascending as tie-break and truncates to limit.
// entries and scores are parallel slices.
func rankResults(entries []domain.Entry, scores []float64, limit int, minScore float64) []domain.Result {
	if limit <= 0 {
		limit = defaultResultLimit
	}

	out := make([]domain.Result, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		if i >= len(scores) || scores[i] <= minScore || scores[i] <= 0 {
			continue
		}
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		out = append(out, domain.Result{Entry: entry, Score: scores[i]})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
