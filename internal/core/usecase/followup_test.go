package usecase

import (
	"reflect"
	"testing"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

func followUpBase() []domain.Entry {
	return []domain.Entry{
		{ID: "ma", Title: "Massachusetts Blue Laws", Type: domain.EntryTypeStatute, Region: "Massachusetts", Era: "Colonial"},
		{ID: "nj", Title: "Bergen County Sunday Closing Law", Type: domain.EntryTypeStatute, Region: "New Jersey", Era: "Modern"},
		{ID: "pa", Title: "Pennsylvania Sunday Hunting Prohibition", Type: domain.EntryTypeStatute, Region: "Pennsylvania", Era: "Colonial"},
		{ID: "mcgowan", Title: "McGowan v. Maryland", Type: domain.EntryTypeCase, Region: "United States", Era: "Modern"},
		{ID: "champerty", Title: "Champerty", Type: domain.EntryTypeDefinition, Region: "England", Era: "Medieval"},
		{ID: "ct", Title: "Connecticut Sunday Package Store Law", Type: domain.EntryTypeStatute, Region: "Connecticut", Era: "Modern"},
	}
}

func TestGenerateFollowUpsOrdersBySharedAttributes(t *testing.T) {
	all := followUpBase()
	results := []domain.Result{{Entry: all[1]}}

	got := generateFollowUps("sunday closing", results, all, 4)
	want := []string{
		"What does the Connecticut Sunday Package Store Law provide?",
		"What does the Massachusetts Blue Laws provide?",
		"What does the Pennsylvania Sunday Hunting Prohibition provide?",
		"What did the court decide in McGowan v. Maryland?",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("generateFollowUps() = %q, want %q", got, want)
	}
}

func TestGenerateFollowUpsExcludesResultsAndQuery(t *testing.T) {
	all := followUpBase()
	results := []domain.Result{{Entry: all[0]}, {Entry: all[2]}}

	got := generateFollowUps("WHAT DOES THE CONNECTICUT SUNDAY PACKAGE STORE LAW PROVIDE?", results, all, 4)
	for _, q := range got {
		switch q {
		case followUpPrompt(all[0]), followUpPrompt(all[2]):
			t.Fatalf("follow-up repeats a returned result: %q", q)
		case followUpPrompt(all[5]):
			t.Fatalf("follow-up repeats the question: %q", q)
		}
	}
	if len(got) != 1 || got[0] != followUpPrompt(all[1]) {
		t.Fatalf("expected only the New Jersey statute, got %q", got)
	}
}

func TestGenerateFollowUpsEmptyWithoutResults(t *testing.T) {
	got := generateFollowUps("xyzzy", nil, followUpBase(), 4)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGenerateFollowUpsRespectsCap(t *testing.T) {
	all := followUpBase()
	got := generateFollowUps("q", []domain.Result{{Entry: all[0]}}, all, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 follow-ups, got %q", got)
	}
}

func TestFollowUpPromptKeepsTitlePunctuationVerbatim(t *testing.T) {
	got := followUpPrompt(domain.Entry{Title: `"Fighting words"`, Type: domain.EntryTypeDefinition})
	if want := `What does ""Fighting words"" mean?`; got != want {
		t.Fatalf("followUpPrompt() = %s, want %s", got, want)
	}
}
