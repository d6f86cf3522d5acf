package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/core/ports"
)

const (
	defaultMaxLimit = 20
	publishTimeout  = 500 * time.Millisecond
)

// AskUseCase runs retrieval and answer synthesis for one question and emits a
// QueryEvent afterwards. Publishing is best effort.
type AskUseCase struct {
	research     ports.LegalResearchService
	publisher    ports.QueryEventPublisher
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
	now          func() time.Time
	onPublishErr func(error)
}

func NewAskUseCase(research ports.LegalResearchService, publisher ports.QueryEventPublisher, defaultLimit, maxLimit int) *AskUseCase {
	if defaultLimit <= 0 {
		defaultLimit = defaultResultLimit
	}
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &AskUseCase{
		research:     research,
		publisher:    publisher,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       slog.Default(),
		now:          time.Now,
	}
}

func (uc *AskUseCase) WithLogger(logger *slog.Logger) *AskUseCase {
	if logger != nil {
		uc.logger = logger
	}
	return uc
}

func (uc *AskUseCase) WithClock(now func() time.Time) *AskUseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// WithPublishFailureHook registers fn to observe failed event publishes.
func (uc *AskUseCase) WithPublishFailureHook(fn func(error)) *AskUseCase {
	uc.onPublishErr = fn
	return uc
}

// ClampLimit maps a requested limit onto 1..maxLimit; zero or negative
// selects the default.
func (uc *AskUseCase) ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return uc.defaultLimit
	case limit > uc.maxLimit:
		return uc.maxLimit
	default:
		return limit
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, req domain.AskRequest) (domain.AskResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return domain.AskResult{}, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("question is required"))
	}

	start := uc.now()
	results := uc.research.Retrieve(question, uc.ClampLimit(req.Limit))
	answer := uc.research.BuildAnswer(question, results)
	duration := uc.now().Sub(start)

	uc.publish(ctx, req, question, results, answer, duration)

	return domain.AskResult{
		Question: question,
		Results:  results,
		Answer:   answer,
		Duration: duration,
	}, nil
}

func (uc *AskUseCase) publish(
	ctx context.Context,
	req domain.AskRequest,
	question string,
	results []domain.Result,
	answer domain.Answer,
	duration time.Duration,
) {
	if uc.publisher == nil {
		return
	}

	event := domain.QueryEvent{
		ID:         uuid.NewString(),
		RequestID:  req.RequestID,
		Channel:    req.Channel,
		Question:   question,
		ResultIDs:  make([]string, 0, len(results)),
		FollowUps:  len(answer.FollowUps),
		Matched:    len(results) > 0,
		DurationMS: float64(duration.Microseconds()) / 1000.0,
		OccurredAt: uc.now().UTC(),
	}
	for _, result := range results {
		event.ResultIDs = append(event.ResultIDs, result.ID)
	}
	if len(results) > 0 {
		event.TopScore = results[0].Score
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := uc.publisher.PublishQueryEvent(publishCtx, event); err != nil {
		uc.logger.Warn("query_event_publish_failed",
			"event_id", event.ID,
			"request_id", req.RequestID,
			"temporary", domain.IsKind(err, domain.ErrTemporary),
			"error", err,
		)
		if uc.onPublishErr != nil {
			uc.onPublishErr(err)
		}
	}
}
