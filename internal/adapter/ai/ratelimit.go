package ai

import (
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/service/ratelimiter"
)

type rateLimited struct {
	base    domain.Generator
	limiter ratelimiter.Limiter
}

// NewRateLimited makes every call take one token from the provider's bucket first.
// A denied call fails at once with a rate_limit GenerationServiceError; it never waits.
func NewRateLimited(base domain.Generator, limiter ratelimiter.Limiter) domain.Generator {
	if limiter == nil || base == nil {
		return base
	}
	return &rateLimited{base: base, limiter: limiter}
}

func (r *rateLimited) Name() string { return r.base.Name() }

func (r *rateLimited) Generate(ctx domain.Context, req domain.GenerateRequest) (string, error) {
	allowed, retryAfter, err := r.limiter.Allow(ctx, r.base.Name(), 1)
	if err != nil {
		slog.Warn("ai rate limiter unavailable, allowing call", slog.String("provider", r.base.Name()), slog.Any("error", err))
	}
	if !allowed {
		return "", &domain.GenerationServiceError{
			Provider: r.base.Name(),
			Kind:     domain.FailureRateLimit,
			Err:      fmt.Errorf("%w: retry after %s", domain.ErrRateLimited, retryAfter),
		}
	}
	return r.base.Generate(ctx, req)
}
