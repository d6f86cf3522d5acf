package usecase

import (
	"reflect"
	"testing"
)

func TestNormalizeLowercasesAndDropsNoise(t *testing.T) {
	got := Normalize("What is the Statute-of-Frauds, in N.Y.?")
	want := []string{"statute", "frauds"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
}

func TestNormalizeKeepsLegallyMeaningfulWords(t *testing.T) {
	got := Normalize("not enforceable without consideration")
	want := []string{"not", "enforceable", "without", "consideration"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
}

func TestNormalizeHandlesUnicodeAndDigits(t *testing.T) {
	got := Normalize("§ 489 Judiciary Law — Ünterlassung")
	want := []string{"489", "judiciary", "law", "ünterlassung"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	if got := Normalize(""); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
	if got := Normalize("  ?! a "); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}
