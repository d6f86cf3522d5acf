package usecase

import (
	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

type weightedField struct {
	weight   float64
	segments [][]string
}

// LexicalScorer scores entries by field-weighted token overlap plus a bonus
// for verbatim phrase matches.
type LexicalScorer struct {
	cfg domain.ScoringConfig
}

func NewLexicalScorer(cfg domain.ScoringConfig) *LexicalScorer {
	return &LexicalScorer{cfg: cfg.Normalize()}
}

// Score returns 0 when no query token occurs in any field. The overlap part
// only depends on the set of query tokens; the phrase bonus depends on their
// order.
func (s *LexicalScorer) Score(queryTokens []string, entry domain.Entry) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	fields := s.indexFields(entry)
	var score float64
	for _, token := range distinctTokens(queryTokens) {
		for _, field := range fields {
			n := 0
			for _, segment := range field.segments {
				for _, t := range segment {
					if t == token {
						n++
					}
				}
			}
			if n > s.cfg.OccurrenceCap {
				n = s.cfg.OccurrenceCap
			}
			score += field.weight * float64(n)
		}
	}
	if score == 0 {
		return 0
	}
	return score + s.phraseBonus(queryTokens, fields)
}

func (s *LexicalScorer) indexFields(entry domain.Entry) []weightedField {
	keywords := make([][]string, 0, len(entry.Keywords))
	for _, keyword := range entry.Keywords {
		keywords = append(keywords, Normalize(keyword))
	}
	return []weightedField{
		{weight: s.cfg.TitleWeight, segments: [][]string{Normalize(entry.Title)}},
		{weight: s.cfg.KeywordsWeight, segments: keywords},
		{weight: s.cfg.SummaryWeight, segments: [][]string{Normalize(entry.Summary)}},
		{weight: s.cfg.ExcerptWeight, segments: [][]string{Normalize(entry.Excerpt)}},
	}
}

// phraseBonus rewards the longest run of consecutive query tokens found
// contiguously in a single field segment. A one-token query has no phrase,
// so it earns the full bonus only when the token appears in the title.
func (s *LexicalScorer) phraseBonus(queryTokens []string, fields []weightedField) float64 {
	if s.cfg.PhraseBonus == 0 {
		return 0
	}

	if len(queryTokens) == 1 {
		if longestCommonRun(queryTokens, fields[0].segments[0]) == 1 {
			return s.cfg.PhraseBonus
		}
		return 0
	}

	best := 0
	for _, field := range fields {
		for _, segment := range field.segments {
			if run := longestCommonRun(queryTokens, segment); run > best {
				best = run
			}
		}
	}
	if best < s.cfg.MinPhraseTokens {
		return 0
	}
	return s.cfg.PhraseBonus * float64(best) / float64(len(queryTokens))
}

func longestCommonRun(query, field []string) int {
	best := 0
	for i := range query {
		for j := range field {
			k := 0
			for i+k < len(query) && j+k < len(field) && query[i+k] == field[j+k] {
				k++
			}
			if k > best {
				best = k
			}
		}
	}
	return best
}
