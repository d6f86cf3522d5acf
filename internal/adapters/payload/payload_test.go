package payload

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

func TestNewQueryResponseEncodesEmptyCollections(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	resp := NewQueryResponse(domain.AskResult{
		Answer: domain.Answer{Answer: "nothing found"},
	}, at)

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, want := range []string{`"results":[]`, `"followUps":[]`, `"timestamp":"2026-10-16T17:00:00Z"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestNewQueryResponseCopiesResultFields(t *testing.T) {
	resp := NewQueryResponse(domain.AskResult{
		Results: []domain.Result{{
			Entry: domain.Entry{
				ID:       "adverse-possession",
				Title:    "Adverse Possession",
				Type:     domain.EntryTypeDoctrine,
				Region:   "United States",
				Era:      "Common law",
				Keywords: []string{"title"},
			},
			Score: 7.5,
		}},
	}, time.Now())

	if len(resp.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(resp.Results))
	}
	got := resp.Results[0]
	if got.ID != "adverse-possession" || got.Type != "doctrine" || got.Score != 7.5 || got.Region != "United States" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Citations == nil || got.Highlights == nil || got.Sources == nil {
		t.Fatalf("collections must not be nil: %+v", got)
	}
}
