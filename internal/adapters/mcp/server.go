// Package mcpadapter exposes legal research as Model Context Protocol tools.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/legal-research-assistant/internal/adapters/payload"
	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/core/ports"
)

const (
	serverName    = "legal-research-assistant"
	serverVersion = "1.0.0"

	researchToolName = "legal_research"
	entryToolName    = "legal_entry"
)

type Server struct {
	askUC   ports.QuestionAnswerer
	entries ports.EntryReader
	now     func() time.Time
}

func NewServer(askUC ports.QuestionAnswerer, entries ports.EntryReader) *Server {
	return &Server{askUC: askUC, entries: entries, now: time.Now}
}

// MCPServer registers the tools on a fresh mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool(researchToolName,
		mcp.WithDescription("Answer a legal research question from the curated knowledge base of definitions, doctrines, statutes and cases. Returns the answer, ranked results with highlights and citations, and follow-up questions as JSON."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural-language legal question, e.g. \"what is champerty\""),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of ranked results"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleResearch)

	srv.AddTool(mcp.NewTool(entryToolName,
		mcp.WithDescription("Fetch a single knowledge-base entry by id, including its citations and sources."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry id as returned in research results"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleEntry)

	return srv
}

// ServeStdio blocks until stdin is closed.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCPServer())
}

func (s *Server) handleResearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.askUC.Ask(ctx, domain.AskRequest{
		Question: question,
		Limit:    request.GetInt("limit", 0),
		Channel:  domain.ChannelMCP,
	})
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			return mcp.NewToolResultError("question is required"), nil
		}
		return nil, fmt.Errorf("legal research: %w", err)
	}

	return jsonResult(payload.NewQueryResponse(res, s.now()))
}

func (s *Server) handleEntry(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry, err := s.entries.Entry(id)
	if err != nil {
		if domain.IsKind(err, domain.ErrEntryNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no entry with id %q", id)), nil
		}
		return nil, err
	}
	return jsonResult(payload.NewEntry(entry))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
