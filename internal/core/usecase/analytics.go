package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/core/ports"
)

// QueryAnalyticsUseCase consumes QueryEvents. Unmatched questions are logged
// as content gaps for knowledge-base editors.
type QueryAnalyticsUseCase struct {
	recorder ports.QueryMetricsRecorder
	service  string
	logger   *slog.Logger
	now      func() time.Time
}

func NewQueryAnalyticsUseCase(recorder ports.QueryMetricsRecorder, service string) *QueryAnalyticsUseCase {
	return &QueryAnalyticsUseCase{
		recorder: recorder,
		service:  service,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

func (uc *QueryAnalyticsUseCase) WithLogger(logger *slog.Logger) *QueryAnalyticsUseCase {
	if logger != nil {
		uc.logger = logger
	}
	return uc
}

func (uc *QueryAnalyticsUseCase) Handle(ctx context.Context, event domain.QueryEvent) (err error) {
	start := uc.now()
	uc.recorder.StartEvent()
	topEntryID := ""
	if len(event.ResultIDs) > 0 {
		topEntryID = event.ResultIDs[0]
	}
	defer func() {
		uc.recorder.FinishEvent(uc.service, event.Channel, len(event.ResultIDs), topEntryID, uc.now().Sub(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(event.Question) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "query analytics", errors.New("event has no question"))
	}
	if !event.OccurredAt.IsZero() {
		uc.recorder.ObserveEventLag(uc.service, start.Sub(event.OccurredAt))
	}

	if !event.Matched || len(event.ResultIDs) == 0 {
		uc.logger.Info("content_gap_question",
			"event_id", event.ID,
			"channel", event.Channel,
			"question", event.Question,
		)
		return nil
	}
	uc.logger.Debug("query_event_processed",
		"event_id", event.ID,
		"top_entry", topEntryID,
		"top_score", event.TopScore,
		"results", len(event.ResultIDs),
	)
	return nil
}
