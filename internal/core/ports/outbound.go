package ports

import (
	"context"
	"time"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

// Scorer measures how strongly an entry matches normalized query tokens.
// Implementations must be deterministic and return values >= 0.
type Scorer interface {
	Score(queryTokens []string, entry domain.Entry) float64
}

// AnswerComposer renders the user-facing answer text for ranked results.
type AnswerComposer interface {
	Compose(question string, results []domain.Result) string
}

// KnowledgeSource loads the raw entries the knowledge base is built from.
type KnowledgeSource interface {
	Load(ctx context.Context) ([]domain.Entry, error)
}

// QueryEventPublisher emits analytics events for answered questions.
type QueryEventPublisher interface {
	PublishQueryEvent(ctx context.Context, event domain.QueryEvent) error
}

// QueryEventSubscriber consumes analytics events.
type QueryEventSubscriber interface {
	SubscribeQueryEvents(ctx context.Context, handler func(context.Context, domain.QueryEvent) error) error
}

// QueryMetricsRecorder receives per-event analytics from the worker.
type QueryMetricsRecorder interface {
	StartEvent()
	FinishEvent(service, channel string, resultCount int, topEntryID string, duration time.Duration, err error)
	ObserveEventLag(service string, lag time.Duration)
}
