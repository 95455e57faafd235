package app

import (
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/extraction"
)

// NewPipeline builds the extraction pipeline with one AI tier per generator, in order,
// and applies the optional profile override file.
func NewPipeline(cfg config.Config, gens []domain.Generator) (*extraction.Pipeline, error) {
	overrides, err := config.LoadProfileFile(cfg.ProfileConfigPath)
	if err != nil {
		return nil, fmt.Errorf("op=app.NewPipeline: %w", err)
	}
	counter := tokencount.NewCounter()
	gateways := make([]*extraction.Gateway, 0, len(gens))
	for _, gen := range gens {
		gateways = append(gateways, extraction.NewGateway(gen, cfg.AIRequestTimeout,
			extraction.WithTokenCounter(counter, modelFor(cfg, gen.Name()))))
	}
	if len(gateways) == 0 {
		slog.Warn("no generation providers configured, extraction runs on heuristics only")
	}
	return extraction.NewPipeline(extraction.Options{
		Gateways:  gateways,
		EnumMode:  extraction.ParseEnumMode(cfg.EnumPolicy),
		Overrides: overrides,
	}), nil
}

func modelFor(cfg config.Config, provider string) string {
	switch provider {
	case "gemini":
		return cfg.GeminiModel
	case "openrouter":
		return cfg.OpenRouterModel
	default:
		return cfg.OpenAIModel
	}
}
