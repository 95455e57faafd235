package app

import (
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/textextractor"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// NewTextExtractor uses the Tika server when configured and in-process parsers otherwise.
// The returned Tika client is nil in the latter case.
func NewTextExtractor(cfg config.Config, roots ...string) (domain.TextExtractor, *tika.Client) {
	if cfg.TikaURL != "" {
		c := tika.New(cfg.TikaURL, cfg.HTTPWriteTimeout, roots...)
		return c, c
	}
	return textextractor.NewLocal(roots...), nil
}
