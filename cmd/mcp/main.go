package main

import (
	"context"
	"log/slog"
	"os"

	mcpadapter "github.com/kirillkom/legal-research-assistant/internal/adapters/mcp"
	"github.com/kirillkom/legal-research-assistant/internal/bootstrap"
	"github.com/kirillkom/legal-research-assistant/internal/config"
	"github.com/kirillkom/legal-research-assistant/internal/observability/logging"
)

const serviceName = "legal-mcp"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("dotenv_load_failed", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	// stdout carries the MCP protocol.
	logger := logging.NewJSONLoggerTo(os.Stderr, serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	app, err := bootstrap.New(context.Background(), cfg, bootstrap.Options{
		ClientName: serviceName,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	logger.Info("mcp_stdio_started", "entries", app.Knowledge.Len())
	if err := mcpadapter.NewServer(app.AskUC, app.Entries).ServeStdio(); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
