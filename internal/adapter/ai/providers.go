package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/ai/openai"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/ai/openrouter"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/service/ratelimiter"
)

// Providers holds the generation clients in fallback order.
type Providers struct {
	Generators []domain.Generator
	closers    []func() error
}

// Close releases SDK connections.
func (p *Providers) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewProviders builds one generator per entry of cfg.AIProviders. Each is wrapped
// with the shared rate limiter (when limiter is non-nil) and the response cache.
// An empty provider list is valid: extraction then runs on heuristics only.
func NewProviders(ctx context.Context, cfg config.Config, limiter *ratelimiter.RedisLuaLimiter) (*Providers, error) {
	p := &Providers{}
	for _, raw := range cfg.AIProviders {
		name := strings.ToLower(strings.TrimSpace(raw))
		var gen domain.Generator
		switch name {
		case "":
			continue
		case "openai":
			gen = openai.New(cfg)
		case "gemini":
			g, err := gemini.New(ctx, cfg)
			if err != nil {
				_ = p.Close()
				return nil, fmt.Errorf("op=ai.NewProviders: %w", err)
			}
			p.closers = append(p.closers, g.Close)
			gen = g
		case "openrouter":
			gen = openrouter.New(cfg)
		default:
			_ = p.Close()
			return nil, fmt.Errorf("op=ai.NewProviders: unknown provider %q", raw)
		}
		if limiter != nil && cfg.AIRateLimitPerMin > 0 {
			limiter.SetBucketConfig(gen.Name(), ratelimiter.NewBucketConfigFromPerMinute(cfg.AIRateLimitPerMin))
			gen = NewRateLimited(gen, limiter)
		}
		p.Generators = append(p.Generators, NewResponseCache(gen, cfg.AICacheSize))
	}
	return p, nil
}
