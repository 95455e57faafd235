// Command worker consumes queued resume parse tasks from Redpanda and runs them
// through the orchestrator.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/app"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(observability.SetupLogger(cfg))
	if !cfg.QueueEnabled() {
		slog.Error("KAFKA_BROKERS is required for the worker")
		os.Exit(1)
	}

	observability.InitMetrics()
	metricsSrv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.MetricsPort), Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core, err := app.NewCore(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	consumer, err := redpanda.NewConsumer(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, core.Orchestrator, cfg.ConsumerMaxConcurrency)
	if err != nil {
		slog.Error("redpanda consumer init failed", slog.Any("error", err))
		core.Close(context.Background())
		os.Exit(1)
	}

	if sweeper := app.NewStaleParseSweeper(core.Candidates, cfg.ParseStaleAfter, cfg.SweepInterval); sweeper != nil {
		go sweeper.Run(ctx)
	}

	slog.Info("worker started", slog.String("topic", cfg.KafkaTopic), slog.String("group", cfg.KafkaGroup),
		slog.Int("max_concurrency", cfg.ConsumerMaxConcurrency))
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("consumer stopped", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	consumer.Close()
	core.Close(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	slog.Info("worker stopped")
}
