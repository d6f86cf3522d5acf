package nats

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

func TestQueryEventRoundTripKeepsFields(t *testing.T) {
	occurred := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	payload, err := encodeQueryEvent(domain.QueryEvent{
		ID:         "evt-1",
		RequestID:  "req-1",
		Channel:    "http",
		Question:   "what is consideration",
		ResultIDs:  []string{"consideration", "promissory-estoppel"},
		TopScore:   14.5,
		FollowUps:  3,
		Matched:    true,
		DurationMS: 1.25,
		OccurredAt: occurred,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	event, err := decodeQueryEvent(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Question != "what is consideration" || event.Channel != "http" || !event.Matched {
		t.Fatalf("unexpected event: %+v", event)
	}
	if len(event.ResultIDs) != 2 || event.ResultIDs[1] != "promissory-estoppel" {
		t.Fatalf("unexpected result ids: %v", event.ResultIDs)
	}
	if !event.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected occurred_at: %v", event.OccurredAt)
	}
}

func TestEncodeUnmatchedEventWritesEmptyResultList(t *testing.T) {
	payload, err := encodeQueryEvent(domain.QueryEvent{ID: "evt-2", Question: "xyzzy"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := `"result_ids":[]`; !strings.Contains(string(payload), want) {
		t.Fatalf("expected %s in %s", want, payload)
	}
}

func TestDecodeQueryEventRejectsMalformedPayload(t *testing.T) {
	for _, raw := range []string{"not-json", `{"question":"no id"}`} {
		_, err := decodeQueryEvent([]byte(raw))
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("payload %q: expected invalid input, got %v", raw, err)
		}
	}
}

func TestClassifyNATSError(t *testing.T) {
	if class := classifyNATSError(context.Canceled); class.Retryable || class.RecordFailure {
		t.Fatalf("canceled context must be neither retryable nor recorded: %+v", class)
	}
	if class := classifyNATSError(nats.ErrNoServers); !class.Retryable {
		t.Fatalf("no servers must be retryable: %+v", class)
	}
	if class := classifyNATSError(nats.ErrBadSubject); class.Retryable || !class.RecordFailure {
		t.Fatalf("bad subject must be permanent: %+v", class)
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	err := wrapTemporaryIfNeeded(nats.ErrConnectionClosed)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	permanent := errors.New("payload too large")
	if got := wrapTemporaryIfNeeded(permanent); domain.IsKind(got, domain.ErrTemporary) {
		t.Fatalf("permanent error must not be temporary: %v", got)
	}
	if wrapTemporaryIfNeeded(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestNewWithOptionsRejectsEmptySubject(t *testing.T) {
	_, err := NewWithOptions("nats://127.0.0.1:4222", "", Options{ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig())})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
