package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizePathCollapsesEntryIDs(t *testing.T) {
	if got := normalizePath("/v1/legal/entries/champerty"); got != "/v1/legal/entries/{id}" {
		t.Fatalf("unexpected path: %s", got)
	}
	if got := normalizePath("/v1/legal/query"); got != "/v1/legal/query" {
		t.Fatalf("unexpected path: %s", got)
	}
}

func TestMiddlewareCountsRequestsByStatus(t *testing.T) {
	m := NewHTTPServerMetrics("legal-api")
	handler := m.Middleware("legal-api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/legal/entries/"+id, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("legal-api", http.MethodGet, "/v1/legal/entries/{id}", "404"))
	if got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
}

func TestRecordQuerySplitsMatchedAndUnmatched(t *testing.T) {
	m := NewHTTPServerMetrics("legal-api")
	m.RecordQuery("legal-api", QueryObservation{Channel: "http", ResultCount: 3, TopScore: 14, FollowUps: 4, Duration: time.Millisecond})
	m.RecordQuery("legal-api", QueryObservation{Channel: "http", Duration: time.Millisecond})

	if got := testutil.ToFloat64(m.queriesTotal.WithLabelValues("legal-api", "http", "matched")); got != 1 {
		t.Fatalf("expected 1 matched query, got %v", got)
	}
	if got := testutil.ToFloat64(m.queriesTotal.WithLabelValues("legal-api", "http", "unmatched")); got != 1 {
		t.Fatalf("expected 1 unmatched query, got %v", got)
	}
	if got := testutil.ToFloat64(m.followUpsTotal.WithLabelValues("legal-api", "http")); got != 4 {
		t.Fatalf("expected 4 follow-ups, got %v", got)
	}
}

func TestRecordBreakerState(t *testing.T) {
	m := NewHTTPServerMetrics("legal-api")
	m.RecordBreakerState("legal-api", "nats.publish", "open")
	if got := testutil.ToFloat64(m.breakerState.WithLabelValues("legal-api", "nats.publish")); got != 1 {
		t.Fatalf("expected open breaker gauge, got %v", got)
	}
	m.RecordBreakerState("legal-api", "nats.publish", "closed")
	if got := testutil.ToFloat64(m.breakerState.WithLabelValues("legal-api", "nats.publish")); got != 0 {
		t.Fatalf("expected closed breaker gauge, got %v", got)
	}
}

func TestWorkerFinishEventCountsTopEntry(t *testing.T) {
	m := NewWorkerMetrics("legal-worker")
	m.StartEvent()
	m.FinishEvent("legal-worker", "mcp", 2, "champerty", time.Millisecond, nil)
	m.StartEvent()
	m.FinishEvent("legal-worker", "mcp", 0, "", time.Millisecond, nil)

	if got := testutil.ToFloat64(m.entryHitsTotal.WithLabelValues("legal-worker", "champerty")); got != 1 {
		t.Fatalf("expected one champerty hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.eventsTotal.WithLabelValues("legal-worker", "mcp", "unmatched", "success")); got != 1 {
		t.Fatalf("expected one unmatched event, got %v", got)
	}
	if got := testutil.ToFloat64(m.processInFlight); got != 0 {
		t.Fatalf("expected no in-flight events, got %v", got)
	}
}
