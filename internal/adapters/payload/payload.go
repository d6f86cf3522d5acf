// Package payload defines the JSON shape shared by the HTTP API, the MCP tool
// and the CLI.
package payload

import (
	"time"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

type Result struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Summary    string          `json:"summary"`
	Excerpt    string          `json:"excerpt"`
	Citations  []string        `json:"citations"`
	Sources    []domain.Source `json:"sources"`
	Score      float64         `json:"score"`
	Highlights []string        `json:"highlights"`
	Region     string          `json:"region"`
	Era        string          `json:"era"`
	Type       string          `json:"type"`
}

type QueryResponse struct {
	Answer    string   `json:"answer"`
	Results   []Result `json:"results"`
	FollowUps []string `json:"followUps"`
	Timestamp string   `json:"timestamp"`
}

// NewQueryResponse renders an answered question. Collections are never null
// in the encoded form.
func NewQueryResponse(res domain.AskResult, at time.Time) QueryResponse {
	out := QueryResponse{
		Answer:    res.Answer.Answer,
		Results:   make([]Result, 0, len(res.Results)),
		FollowUps: nonNil(res.Answer.FollowUps),
		Timestamp: at.UTC().Format(time.RFC3339),
	}
	for _, r := range res.Results {
		out.Results = append(out.Results, Result{
			ID:         r.ID,
			Title:      r.Title,
			Summary:    r.Summary,
			Excerpt:    r.Excerpt,
			Citations:  nonNil(r.Citations),
			Sources:    nonNilSources(r.Sources),
			Score:      r.Score,
			Highlights: nonNil(r.Highlights),
			Region:     r.Region,
			Era:        r.Era,
			Type:       r.Type,
		})
	}
	return out
}

// NewEntry normalizes nil collections of a single entry for encoding.
func NewEntry(entry domain.Entry) domain.Entry {
	entry.Keywords = nonNil(entry.Keywords)
	entry.Citations = nonNil(entry.Citations)
	entry.Sources = nonNilSources(entry.Sources)
	return entry
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func nonNilSources(items []domain.Source) []domain.Source {
	if items == nil {
		return []domain.Source{}
	}
	return items
}
