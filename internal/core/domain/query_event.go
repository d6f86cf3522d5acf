package domain

import "time"

// QueryEvent describes one answered legal question for analytics consumers.
type QueryEvent struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Channel    string    `json:"channel"`
	Question   string    `json:"question"`
	ResultIDs  []string  `json:"result_ids"`
	TopScore   float64   `json:"top_score"`
	FollowUps  int       `json:"follow_ups"`
	Matched    bool      `json:"matched"`
	DurationMS float64   `json:"duration_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}
