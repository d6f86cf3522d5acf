package ports

import (
	"context"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

// LegalResearchService is the inbound contract for retrieval and answer
// synthesis over the knowledge base. Both calls are pure and never block.
type LegalResearchService interface {
	Retrieve(question string, limit int) []domain.Result
	BuildAnswer(question string, results []domain.Result) domain.Answer
}

// EntryReader is the inbound read model for single knowledge-base entries.
type EntryReader interface {
	Entry(id string) (domain.Entry, error)
}

// QuestionAnswerer validates a question, answers it and reports the query
// to analytics. It is the entry point shared by every transport.
type QuestionAnswerer interface {
	Ask(ctx context.Context, req domain.AskRequest) (domain.AskResult, error)
}
