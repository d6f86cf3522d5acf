package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

type followUpCandidate struct {
	entry  domain.Entry
	shared int
	order  int
}

// generateFollowUps proposes questions about entries that share type, region
// or era with the top result but did not make it into results. Candidates
// sharing more attributes come first; ties keep knowledge-base order.
func generateFollowUps(question string, results []domain.Result, all []domain.Entry, maxFollowUps int) []string {
	if len(results) == 0 || maxFollowUps <= 0 {
		return []string{}
	}
	out := make([]string, 0, maxFollowUps)

	top := results[0].Entry
	included := make(map[string]struct{}, len(results))
	for _, r := range results {
		included[r.ID] = struct{}{}
	}

	candidates := make([]followUpCandidate, 0, len(all))
	for i, entry := range all {
		if _, ok := included[entry.ID]; ok {
			continue
		}
		shared := sharedAttributes(top, entry)
		if shared == 0 {
			continue
		}
		candidates = append(candidates, followUpCandidate{entry: entry, shared: shared, order: i})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].shared != candidates[j].shared {
			return candidates[i].shared > candidates[j].shared
		}
		return candidates[i].order < candidates[j].order
	})

	seen := map[string]struct{}{
		strings.ToLower(strings.TrimSpace(question)): {},
	}
	for _, c := range candidates {
		if len(out) == maxFollowUps {
			break
		}
		prompt := followUpPrompt(c.entry)
		key := strings.ToLower(prompt)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, prompt)
	}
	return out
}

func sharedAttributes(a, b domain.Entry) int {
	n := 0
	if a.Type != "" && strings.EqualFold(a.Type, b.Type) {
		n++
	}
	if a.Region != "" && strings.EqualFold(a.Region, b.Region) {
		n++
	}
	if a.Era != "" && strings.EqualFold(a.Era, b.Era) {
		n++
	}
	return n
}

func followUpPrompt(entry domain.Entry) string {
	title := strings.TrimSpace(entry.Title)
	switch entry.Type {
	case domain.EntryTypeDefinition:
		return fmt.Sprintf("What does \"%s\" mean?", title)
	case domain.EntryTypeDoctrine:
		return fmt.Sprintf("How do courts apply %s?", title)
	case domain.EntryTypeStatute:
		if strings.HasPrefix(strings.ToLower(title), "the ") {
			return fmt.Sprintf("What does %s provide?", title)
		}
		return fmt.Sprintf("What does the %s provide?", title)
	case domain.EntryTypeCase:
		return fmt.Sprintf("What did the court decide in %s?", title)
	default:
		return fmt.Sprintf("Tell me more about %s.", title)
	}
}
