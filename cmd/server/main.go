// Command server starts the AI recruit assistant HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpserver "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/app"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/usecase"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

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

	deps := app.Dependencies{DB: core.Pool}
	if core.Redis != nil {
		deps.Redis = core.Redis
	}
	extractor, tikaClient := app.NewTextExtractor(cfg)
	if tikaClient != nil {
		deps.Tika = tikaClient
	}

	// Queued parses run in the worker; without brokers the orchestrator parses in-process.
	var queue domain.ParseQueue
	if cfg.QueueEnabled() {
		producer, err := redpanda.NewProducer(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, "")
		if err != nil {
			slog.Error("redpanda producer connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer producer.Close()
		queue = producer
		deps.Kafka = producer
	}

	if sweeper := app.NewStaleParseSweeper(core.Candidates, cfg.ParseStaleAfter, cfg.SweepInterval); sweeper != nil {
		go sweeper.Run(ctx)
	}

	srv := httpserver.NewServer(cfg,
		usecase.NewCandidateService(core.Candidates, core.Jobs, extractor, core.Pipeline, queue, core.Orchestrator),
		usecase.NewJobService(core.Jobs),
		usecase.NewInterviewService(core.Interviews, core.Candidates, core.Jobs),
		usecase.NewAIService(core.Candidates, core.Jobs, core.Interviews, core.Pipeline),
		app.BuildReadinessChecks(deps)...,
	)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.BuildRouter(cfg, srv),
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout + 5*time.Second,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.Bool("queue", cfg.QueueEnabled()))
		errCh <- srvHTTP.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", slog.Any("error", err))
	}
	core.Close(shutdownCtx)
	slog.Info("server stopped")
}
