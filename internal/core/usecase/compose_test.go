package usecase

import (
	"strings"
	"testing"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

func composeResult(id, title, entryType, summary string, citations ...string) domain.Result {
	return domain.Result{Entry: domain.Entry{
		ID:        id,
		Title:     title,
		Type:      entryType,
		Summary:   summary,
		Citations: citations,
	}}
}

func TestComposeWithoutResultsReturnsFallback(t *testing.T) {
	if got := NewTemplateComposer().Compose("anything", nil); got != NoMatchAnswer {
		t.Fatalf("expected fallback answer, got %q", got)
	}
}

func TestComposeNamesTopResultAndCitations(t *testing.T) {
	top := composeResult("champerty", "Champerty", domain.EntryTypeDefinition, "Financing a stranger's lawsuit for a share", "4 Blackstone *135", "CLA 1967 s. 14")
	top.Region = "England"
	top.Era = "Medieval"

	got := NewTemplateComposer().Compose("what is champerty", []domain.Result{top})

	wantOpening := `"Champerty" is the closest match: a legal definition in England (Medieval). Financing a stranger's lawsuit for a share.`
	if !strings.HasPrefix(got, wantOpening) {
		t.Fatalf("unexpected opening:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n\nCitations: Champerty: 4 Blackstone *135; CLA 1967 s. 14.") {
		t.Fatalf("unexpected citation list:\n%s", got)
	}
}

func TestComposeReferencesAtMostThreeResults(t *testing.T) {
	results := []domain.Result{
		composeResult("a", "Alpha", domain.EntryTypeDoctrine, "First."),
		composeResult("b", "Beta", domain.EntryTypeStatute, "Second.", "Beta Act § 1"),
		composeResult("c", "Gamma", domain.EntryTypeCase, "Third."),
		composeResult("d", "Delta", domain.EntryTypeCase, "Fourth.", "Delta v. Epsilon"),
	}

	got := NewTemplateComposer().Compose("q", results)
	if !strings.HasPrefix(got, `"Alpha" is the closest match: a legal doctrine.`) {
		t.Fatalf("unexpected opening: %q", got)
	}
	for _, want := range []string{`"Beta" (statute): Second.`, `"Gamma" (case): Third.`, "Citations: Beta: Beta Act § 1."} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
	if strings.Contains(got, "Delta") {
		t.Fatalf("fourth result must not be referenced: %q", got)
	}
}

func TestComposeOmitsCitationsWhenNoneExist(t *testing.T) {
	got := NewTemplateComposer().Compose("q", []domain.Result{
		composeResult("ap", "Adverse Possession", domain.EntryTypeDoctrine, "Title by open possession."),
	})
	if strings.Contains(got, "Citations") {
		t.Fatalf("expected no citation list: %q", got)
	}
}

func TestComposeDoesNotEscapeTitles(t *testing.T) {
	top := composeResult("fighting-words", `The "Fighting Words" Doctrine`, domain.EntryTypeDoctrine, "Speech likely to provoke violence is unprotected")
	second := composeResult("tab", "Title\twith tab", domain.EntryTypeDefinition, "A title carrying a control rune")

	got := NewTemplateComposer().Compose("fighting words", []domain.Result{top, second})
	if strings.Contains(got, `\"`) || strings.Contains(got, `\t`) {
		t.Fatalf("answer contains Go escapes:\n%s", got)
	}
	if !strings.HasPrefix(got, `"The "Fighting Words" Doctrine" is the closest match`) {
		t.Fatalf("unexpected opening:\n%s", got)
	}
	if !strings.Contains(got, "\"Title\twith tab\" (") {
		t.Fatalf("expected raw second title:\n%s", got)
	}
}
