package usecase

import (
	"fmt"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/core/knowledge"
	"github.com/kirillkom/legal-research-assistant/internal/core/ports"
)

// ResearchUseCase answers legal questions against an immutable knowledge
// base. It holds no mutable state, so one instance serves all requests.
type ResearchUseCase struct {
	base     *knowledge.Base
	scorer   ports.Scorer
	composer ports.AnswerComposer
	cfg      domain.ScoringConfig
}

// NewResearchUseCase wires the lexical scorer and template composer when
// scorer or composer is nil.
func NewResearchUseCase(
	base *knowledge.Base,
	scorer ports.Scorer,
	composer ports.AnswerComposer,
	cfg domain.ScoringConfig,
) *ResearchUseCase {
	cfg = cfg.Normalize()
	if scorer == nil {
		scorer = NewLexicalScorer(cfg)
	}
	if composer == nil {
		composer = NewTemplateComposer()
	}
	return &ResearchUseCase{
		base:     base,
		scorer:   scorer,
		composer: composer,
		cfg:      cfg,
	}
}

// Retrieve returns at most limit results ordered by relevance. A question
// without indexable tokens yields an empty slice.
func (uc *ResearchUseCase) Retrieve(question string, limit int) []domain.Result {
	tokens := Normalize(question)
	if len(tokens) == 0 {
		return []domain.Result{}
	}

	entries := uc.base.Entries()
	scores := make([]float64, len(entries))
	for i, entry := range entries {
		scores[i] = uc.scorer.Score(tokens, entry)
	}

	ranked := rankResults(entries, scores, limit, uc.cfg.MinScore)
	for i := range ranked {
		ranked[i].Highlights = extractHighlights(tokens, ranked[i].Entry, uc.cfg.HighlightMaxSpans, uc.cfg.HighlightMaxChars)
	}
	return ranked
}

func (uc *ResearchUseCase) BuildAnswer(question string, results []domain.Result) domain.Answer {
	return domain.Answer{
		Answer:    uc.composer.Compose(question, results),
		FollowUps: generateFollowUps(question, results, uc.base.Entries(), uc.cfg.FollowUpMax),
	}
}

func (uc *ResearchUseCase) Entry(id string) (domain.Entry, error) {
	entry, ok := uc.base.Get(id)
	if !ok {
		return domain.Entry{}, domain.WrapError(domain.ErrEntryNotFound, "entry", fmt.Errorf("id=%s", id))
	}
	return entry, nil
}
