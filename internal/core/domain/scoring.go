package domain

// ScoringConfig holds the tunable constants of lexical retrieval and answer
// assembly.
type ScoringConfig struct {
	TitleWeight    float64
	KeywordsWeight float64
	SummaryWeight  float64
	ExcerptWeight  float64

	// OccurrenceCap limits how many occurrences of one token count per field.
	OccurrenceCap int

	PhraseBonus     float64
	MinPhraseTokens int

	// MinScore is exclusive: results must score strictly above it.
	MinScore float64

	HighlightMaxSpans int
	HighlightMaxChars int

	FollowUpMax int
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		TitleWeight:    4,
		KeywordsWeight: 3,
		SummaryWeight:  2,
		ExcerptWeight:  1,

		OccurrenceCap: 3,

		PhraseBonus:     5,
		MinPhraseTokens: 2,

		MinScore: 0,

		HighlightMaxSpans: 3,
		HighlightMaxChars: 220,

		FollowUpMax: 4,
	}
}

// Normalize replaces unset or invalid values with defaults.
func (c ScoringConfig) Normalize() ScoringConfig {
	out := c
	def := DefaultScoringConfig()

	if out.TitleWeight <= 0 {
		out.TitleWeight = def.TitleWeight
	}
	if out.KeywordsWeight <= 0 {
		out.KeywordsWeight = def.KeywordsWeight
	}
	if out.SummaryWeight <= 0 {
		out.SummaryWeight = def.SummaryWeight
	}
	if out.ExcerptWeight <= 0 {
		out.ExcerptWeight = def.ExcerptWeight
	}
	if out.OccurrenceCap <= 0 {
		out.OccurrenceCap = def.OccurrenceCap
	}
	if out.PhraseBonus < 0 {
		out.PhraseBonus = def.PhraseBonus
	}
	if out.MinPhraseTokens < 2 {
		out.MinPhraseTokens = def.MinPhraseTokens
	}
	if out.MinScore < 0 {
		out.MinScore = def.MinScore
	}
	if out.HighlightMaxSpans <= 0 {
		out.HighlightMaxSpans = def.HighlightMaxSpans
	}
	if out.HighlightMaxChars < 40 {
		out.HighlightMaxChars = def.HighlightMaxChars
	}
	if out.FollowUpMax <= 0 {
		out.FollowUpMax = def.FollowUpMax
	}
	return out
}
