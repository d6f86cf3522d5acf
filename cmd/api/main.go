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

	httpadapter "github.com/kirillkom/legal-research-assistant/internal/adapters/http"
	"github.com/kirillkom/legal-research-assistant/internal/bootstrap"
	"github.com/kirillkom/legal-research-assistant/internal/config"
	"github.com/kirillkom/legal-research-assistant/internal/observability/logging"
	"github.com/kirillkom/legal-research-assistant/internal/observability/metrics"
)

const serviceName = "legal-api"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("dotenv_load_failed", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		ClientName: serviceName,
		Logger:     logger,
		StateObserver: func(operation, _, to string) {
			httpMetrics.RecordBreakerState(serviceName, operation, to)
		},
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.AskUC.WithPublishFailureHook(func(error) {
		httpMetrics.RecordPublishFailure(serviceName)
	})

	router, err := httpadapter.NewRouter(app.AskUC, app.Entries, httpadapter.Options{
		Service:          serviceName,
		Metrics:          httpMetrics,
		MaxInFlight:      cfg.APIMaxInFlight,
		BackpressureWait: time.Duration(cfg.APIBackpressureWaitMS) * time.Millisecond,
	})
	if err != nil {
		logger.Error("router_init_failed", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           http.TimeoutHandler(router.Handler(), time.Duration(cfg.APIRequestTimeoutSecond)*time.Second, `{"error":"request timed out"}`),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort, "events_enabled", cfg.NATSURL != "")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
