package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "legal"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge
	rejectedTotal   *prometheus.CounterVec

	queriesTotal    *prometheus.CounterVec
	queryResults    *prometheus.HistogramVec
	queryTopScore   *prometheus.HistogramVec
	queryDuration   *prometheus.HistogramVec
	followUpsTotal  *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	rejectedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "backpressure_rejected_total",
			Help:      "Requests rejected because the in-flight limit was reached.",
		},
		[]string{"service", "path"},
	)
	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "research",
			Name:      "queries_total",
			Help:      "Answered legal questions by channel and outcome.",
		},
		[]string{"service", "channel", "outcome"},
	)
	queryResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "research",
			Name:      "results",
			Help:      "Distribution of ranked results per answered question.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8, 13},
		},
		[]string{"service", "channel"},
	)
	queryTopScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "research",
			Name:      "top_score",
			Help:      "Score of the best result per matched question.",
			Buckets:   []float64{1, 2, 4, 6, 8, 12, 16, 24, 32, 48},
		},
		[]string{"service", "channel"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "research",
			Name:      "duration_seconds",
			Help:      "Retrieval and answer composition duration in seconds.",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
		[]string{"service", "channel"},
	)
	followUpsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "research",
			Name:      "follow_ups_total",
			Help:      "Total suggested follow-up questions.",
		},
		[]string{"service", "channel"},
	)
	publishFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "publish_failures_total",
			Help:      "Query events that could not be published.",
		},
		[]string{"service"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_open",
			Help:      "1 while the circuit breaker of an operation is open or half-open.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		rejectedTotal,
		queriesTotal,
		queryResults,
		queryTopScore,
		queryDuration,
		followUpsTotal,
		publishFailures,
		breakerState,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		rejectedTotal:   rejectedTotal,
		queriesTotal:    queriesTotal,
		queryResults:    queryResults,
		queryTopScore:   queryTopScore,
		queryDuration:   queryDuration,
		followUpsTotal:  followUpsTotal,
		publishFailures: publishFailures,
		breakerState:    breakerState,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath keeps entry ids out of metric labels.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/legal/entries/"):
		return "/v1/legal/entries/{id}"
	default:
		return path
	}
}

// QueryObservation summarizes one answered question.
type QueryObservation struct {
	Channel     string
	ResultCount int
	TopScore    float64
	FollowUps   int
	Duration    time.Duration
}

func (m *HTTPServerMetrics) RecordQuery(service string, obs QueryObservation) {
	channel := obs.Channel
	if channel == "" {
		channel = "unknown"
	}
	outcome := "unmatched"
	if obs.ResultCount > 0 {
		outcome = "matched"
		m.queryTopScore.WithLabelValues(service, channel).Observe(obs.TopScore)
	}
	m.queriesTotal.WithLabelValues(service, channel, outcome).Inc()
	m.queryResults.WithLabelValues(service, channel).Observe(float64(obs.ResultCount))
	m.queryDuration.WithLabelValues(service, channel).Observe(obs.Duration.Seconds())
	if obs.FollowUps > 0 {
		m.followUpsTotal.WithLabelValues(service, channel).Add(float64(obs.FollowUps))
	}
}

func (m *HTTPServerMetrics) RecordBackpressureRejection(service, path string) {
	m.rejectedTotal.WithLabelValues(service, normalizePath(path)).Inc()
}

func (m *HTTPServerMetrics) RecordPublishFailure(service string) {
	m.publishFailures.WithLabelValues(service).Inc()
}

// RecordBreakerState matches resilience.StateObserver once bound to a service.
func (m *HTTPServerMetrics) RecordBreakerState(service, operation, to string) {
	value := 0.0
	if to != "closed" {
		value = 1
	}
	m.breakerState.WithLabelValues(service, operation).Set(value)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
