package domain

import "time"

// Channels a question can arrive through.
const (
	ChannelHTTP = "http"
	ChannelMCP  = "mcp"
	ChannelCLI  = "cli"
)

type AskRequest struct {
	Question  string
	Limit     int
	Channel   string
	RequestID string
}

type AskResult struct {
	Question string
	Results  []Result
	Answer   Answer
	Duration time.Duration
}
