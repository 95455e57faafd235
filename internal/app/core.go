package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	ai "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/ai"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/extraction"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/orchestrator"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/service/ratelimiter"
)

// Core holds the infrastructure shared by the server and the worker: the
// database, optional Redis, generation providers, the pipeline and the
// orchestrator that owns background parses.
type Core struct {
	Pool         *pgxpool.Pool
	Redis        *redis.Client
	Providers    *ai.Providers
	Pipeline     *extraction.Pipeline
	Candidates   *postgres.CandidateRepo
	Jobs         *postgres.JobRepo
	Interviews   *postgres.InterviewRepo
	Orchestrator *orchestrator.Orchestrator
}

// NewCore connects and migrates the database and builds the extraction stack.
// Redis, when configured, backs the provider rate limiter and the cross-process parse lock.
func NewCore(ctx context.Context, cfg config.Config) (*Core, error) {
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("op=app.NewCore: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("op=app.NewCore: %w", err)
	}
	c := &Core{
		Pool:       pool,
		Candidates: postgres.NewCandidateRepo(pool),
		Jobs:       postgres.NewJobRepo(pool),
		Interviews: postgres.NewInterviewRepo(pool),
	}

	var limiter *ratelimiter.RedisLuaLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			c.Close(ctx)
			return nil, fmt.Errorf("op=app.NewCore: redis url: %w", err)
		}
		c.Redis = redis.NewClient(opts)
		limiter = ratelimiter.NewRedisLuaLimiter(c.Redis, nil)
	}

	c.Providers, err = ai.NewProviders(ctx, cfg, limiter)
	if err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("op=app.NewCore: %w", err)
	}
	c.Pipeline, err = NewPipeline(cfg, c.Providers.Generators)
	if err != nil {
		c.Close(ctx)
		return nil, err
	}

	opts := []orchestrator.Option{orchestrator.WithStatus(c.Candidates)}
	if c.Redis != nil {
		opts = append(opts, orchestrator.WithLocker(orchestrator.NewRedisLocker(c.Redis, cfg.ParseLockTTL)))
	}
	c.Orchestrator = orchestrator.New(c.Candidates, c.Pipeline, cfg.OrchestratorWorkers, opts...)
	slog.Info("core ready",
		slog.Int("providers", len(c.Providers.Generators)),
		slog.Bool("redis", c.Redis != nil),
		slog.Int("workers", cfg.OrchestratorWorkers))
	return c, nil
}

// Close drains the orchestrator and releases connections.
func (c *Core) Close(ctx context.Context) {
	if c.Orchestrator != nil {
		if err := c.Orchestrator.Close(ctx); err != nil {
			slog.Warn("orchestrator drain incomplete", slog.Any("error", err))
		}
	}
	if c.Providers != nil {
		_ = c.Providers.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	c.Pool.Close()
}
