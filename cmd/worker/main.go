package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/legal-research-assistant/internal/config"
	"github.com/kirillkom/legal-research-assistant/internal/core/usecase"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-research-assistant/internal/observability/logging"
	"github.com/kirillkom/legal-research-assistant/internal/observability/metrics"
)

const serviceName = "legal-worker"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("dotenv_load_failed", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.NATSURL == "" {
		logger.Error("worker_requires_nats", "hint", "set NATS_URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ClientName:         serviceName,
		ResilienceExecutor: resilience.NewExecutor(cfg.ResilienceConfig()).WithLogger(logger),
		Logger:             logger,
	})
	if err != nil {
		logger.Error("nats_connect_failed", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	analytics := usecase.NewQueryAnalyticsUseCase(workerMetrics, serviceName).WithLogger(logger)

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	if err := queue.SubscribeQueryEvents(ctx, analytics.Handle); err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
