package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/legal-research-assistant/internal/adapters/payload"
	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/core/ports"
	"github.com/kirillkom/legal-research-assistant/internal/observability/metrics"
)

const (
	entriesPrefix   = "/v1/legal/entries/"
	maxRequestBytes = 64 << 10
)

type Options struct {
	Service string
	// Metrics is optional; nil disables /metrics and request metrics.
	Metrics          *metrics.HTTPServerMetrics
	MaxInFlight      int
	BackpressureWait time.Duration
	Now              func() time.Time
}

type Router struct {
	askUC     ports.QuestionAnswerer
	entries   ports.EntryReader
	validator *requestValidator
	opts      Options
}

func NewRouter(askUC ports.QuestionAnswerer, entries ports.EntryReader, opts Options) (*Router, error) {
	validator, err := newRequestValidator()
	if err != nil {
		return nil, err
	}
	if opts.Service == "" {
		opts.Service = "legal-api"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Router{
		askUC:     askUC,
		entries:   entries,
		validator: validator,
		opts:      opts,
	}, nil
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc(queryPath, rt.queryLegal)
	api.HandleFunc(entriesPrefix, rt.getEntryByID)
	api.HandleFunc("/v1/openapi.yaml", rt.openAPIDocument)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.opts.Metrics != nil {
		mux.Handle("/metrics", rt.opts.Metrics.Handler())
	}
	mux.Handle("/", backpressureMiddleware(api, rt.opts.MaxInFlight, rt.opts.BackpressureWait, rt.onRejected))

	var handler http.Handler = mux
	if rt.opts.Metrics != nil {
		handler = rt.opts.Metrics.Middleware(rt.opts.Service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) onRejected(r *http.Request) {
	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordBackpressureRejection(rt.opts.Service, r.URL.Path)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPISpec)
}

type queryRequest struct {
	Question string      `json:"question"`
	Limit    json.Number `json:"limit"`
}

func (rt *Router) queryLegal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := rt.validator.validateQuery(body); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	var req queryRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	limit, err := parseLimit(req.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := rt.askUC.Ask(r.Context(), domain.AskRequest{
		Question:  req.Question,
		Limit:     limit,
		Channel:   domain.ChannelHTTP,
		RequestID: requestIDFromContext(r.Context()),
	})
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status == http.StatusBadRequest && strings.TrimSpace(req.Question) == "" {
			writeError(w, status, "question is required")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	if rt.opts.Metrics != nil {
		obs := metrics.QueryObservation{
			Channel:     domain.ChannelHTTP,
			ResultCount: len(res.Results),
			FollowUps:   len(res.Answer.FollowUps),
			Duration:    res.Duration,
		}
		if len(res.Results) > 0 {
			obs.TopScore = res.Results[0].Score
		}
		rt.opts.Metrics.RecordQuery(rt.opts.Service, obs)
	}

	writeJSON(w, http.StatusOK, payload.NewQueryResponse(res, rt.opts.Now()))
}

// parseLimit accepts integral JSON numbers; an absent limit is 0, which
// selects the default.
func parseLimit(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	f, err := n.Float64()
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("limit must be an integer")
	}
	return int(f), nil
}

func (rt *Router) getEntryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, entriesPrefix)
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "entry id is required")
		return
	}

	entry, err := rt.entries.Entry(id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payload.NewEntry(entry))
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
