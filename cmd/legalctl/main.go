package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/legal-research-assistant/internal/adapters/cli"
	"github.com/kirillkom/legal-research-assistant/internal/config"
	"github.com/kirillkom/legal-research-assistant/internal/observability/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "legalctl:", err)
		os.Exit(1)
	}
	cfg := config.Load()
	logger := logging.NewJSONLoggerTo(os.Stderr, "legalctl", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(config.Load, logger)
	if err := cli.Execute(ctx, root, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "legalctl:", err)
		stop()
		os.Exit(1)
	}
}
