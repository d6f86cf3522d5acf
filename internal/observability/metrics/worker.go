package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics aggregates query events consumed by the analytics worker.
type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal     *prometheus.CounterVec
	eventResults    *prometheus.HistogramVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	eventLag        *prometheus.HistogramVec
	entryHitsTotal  *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "query_events_total",
			Help:      "Consumed query events by channel, outcome and processing status.",
		},
		[]string{"service", "channel", "outcome", "status"},
	)
	eventResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "query_event_results",
			Help:      "Distribution of result counts carried by query events.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8, 13},
		},
		[]string{"service", "channel"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "query_event_process_duration_seconds",
			Help:      "Query event processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "query_event_in_flight",
			Help:      "Number of query events being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "query_event_lag_seconds",
			Help:      "Delay between answering a question and consuming its event.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)
	entryHitsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "entry_hits_total",
			Help:      "How often each knowledge-base entry was returned as the top result.",
		},
		[]string{"service", "entry_id"},
	)

	registry.MustRegister(eventsTotal, eventResults, processDuration, processInFlight, eventLag, entryHitsTotal)

	return &WorkerMetrics{
		registry:        registry,
		eventsTotal:     eventsTotal,
		eventResults:    eventResults,
		processDuration: processDuration,
		processInFlight: processInFlight,
		eventLag:        eventLag,
		entryHitsTotal:  entryHitsTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartEvent() {
	m.processInFlight.Inc()
}

// FinishEvent records one consumed event. topEntryID is empty for
// unmatched questions.
func (m *WorkerMetrics) FinishEvent(service, channel string, resultCount int, topEntryID string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	outcome := "unmatched"
	if resultCount > 0 {
		outcome = "matched"
	}
	if channel == "" {
		channel = "unknown"
	}

	m.eventsTotal.WithLabelValues(service, channel, outcome, status).Inc()
	m.eventResults.WithLabelValues(service, channel).Observe(float64(resultCount))
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if topEntryID != "" {
		m.entryHitsTotal.WithLabelValues(service, topEntryID).Inc()
	}
}

func (m *WorkerMetrics) ObserveEventLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}
