package usecase

import (
	"strings"
	"testing"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

func TestScoreIsZeroWithoutOverlap(t *testing.T) {
	scorer := NewLexicalScorer(domain.DefaultScoringConfig())
	entry := domain.Entry{ID: "laches", Title: "Laches", Summary: "Unreasonable delay bars equitable relief."}

	if got := scorer.Score(Normalize("adverse possession"), entry); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := scorer.Score(nil, entry); got != 0 {
		t.Fatalf("expected 0 for empty query, got %v", got)
	}
}

func TestScoreWeightsTitleAboveExcerpt(t *testing.T) {
	scorer := NewLexicalScorer(domain.DefaultScoringConfig())
	inTitle := domain.Entry{ID: "a", Title: "Champerty"}
	inExcerpt := domain.Entry{ID: "b", Title: "Maintenance", Excerpt: "Related to champerty."}

	query := Normalize("champerty")
	// title 4 plus the single-token title bonus 5
	if got := scorer.Score(query, inTitle); got != 9 {
		t.Fatalf("expected title score 9, got %v", got)
	}
	if got := scorer.Score(query, inExcerpt); got != 1 {
		t.Fatalf("expected excerpt score 1, got %v", got)
	}
}

func TestScoreCapsOccurrencesPerField(t *testing.T) {
	scorer := NewLexicalScorer(domain.DefaultScoringConfig())
	entry := domain.Entry{ID: "x", Title: "Other", Excerpt: strings.Repeat("tort ", 10)}

	if got := scorer.Score([]string{"tort"}, entry); got != 3 {
		t.Fatalf("expected capped excerpt score 3, got %v", got)
	}
}

func TestScoreIsMonotonicInTitleOccurrences(t *testing.T) {
	scorer := NewLexicalScorer(domain.DefaultScoringConfig())
	query := Normalize("champerty")
	entry := domain.Entry{ID: "c", Title: "Champerty", Summary: "Financing another's lawsuit."}

	before := scorer.Score(query, entry)
	entry.Title = "Champerty (champerty)"
	after := scorer.Score(query, entry)
	if after < before {
		t.Fatalf("score decreased after adding a title occurrence: %v -> %v", before, after)
	}

	multi := Normalize("blue laws sunday")
	statute := domain.Entry{ID: "s", Title: "Sunday Closing", Summary: "Blue laws restrict sunday trade."}
	before = scorer.Score(multi, statute)
	statute.Title = "Sunday Closing (Sunday)"
	if after := scorer.Score(multi, statute); after < before {
		t.Fatalf("score decreased for multi-token query: %v -> %v", before, after)
	}
}

func TestScoreOverlapIgnoresQueryOrderAndRepeats(t *testing.T) {
	cfg := domain.DefaultScoringConfig()
	cfg.PhraseBonus = 0
	scorer := NewLexicalScorer(cfg)
	entry := domain.Entry{
		ID:       "sof",
		Title:    "Statute of Frauds",
		Keywords: []string{"writing requirement"},
		Summary:  "Certain contracts must be in writing.",
	}

	a := scorer.Score(Normalize("frauds statute writing"), entry)
	b := scorer.Score(Normalize("writing statute frauds"), entry)
	c := scorer.Score(Normalize("statute statute frauds writing"), entry)
	if a != b || a != c {
		t.Fatalf("expected order independent overlap, got %v %v %v", a, b, c)
	}
}

func TestScorePhraseBonusRewardsVerbatimRuns(t *testing.T) {
	scorer := NewLexicalScorer(domain.DefaultScoringConfig())
	entry := domain.Entry{ID: "sof", Title: "Statute of Frauds"}

	// overlap 4+4, full run of 2 tokens earns the whole bonus
	if got := scorer.Score(Normalize("statute of frauds"), entry); got != 13 {
		t.Fatalf("expected 13, got %v", got)
	}
	// same overlap, no contiguous run
	if got := scorer.Score(Normalize("frauds statute"), entry); got != 8 {
		t.Fatalf("expected 8, got %v", got)
	}
}
