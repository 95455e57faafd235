// Package ai assembles the generation providers and the wrappers applied to them.
package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// responseCache remembers usable deterministic responses, keyed by a hash of the
// whole request. A response is usable when it passes the output check carried by
// ctx, or, without one, when it is non-empty and holds a JSON block. Requests
// with a non-zero temperature pass through. Eviction is FIFO.
type responseCache struct {
	base     domain.Generator
	capacity int
	mu       sync.RWMutex
	m        map[string]string
	ord      []string
}

// NewResponseCache wraps base with a cache of capacity entries.
// If capacity <= 0, base is returned unmodified.
func NewResponseCache(base domain.Generator, capacity int) domain.Generator {
	if capacity <= 0 || base == nil {
		return base
	}
	return &responseCache{base: base, capacity: capacity, m: make(map[string]string), ord: make([]string, 0, capacity)}
}

func (c *responseCache) Name() string { return c.base.Name() }

func (c *responseCache) Generate(ctx domain.Context, req domain.GenerateRequest) (string, error) {
	if req.Temperature != 0 {
		return c.base.Generate(ctx, req)
	}
	k, ok := keyFor(req)
	if !ok {
		return c.base.Generate(ctx, req)
	}
	c.mu.RLock()
	v, ok := c.m[k]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}
	out, err := c.base.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if usable(ctx, out) {
		c.put(k, out)
	}
	return out, nil
}

func usable(ctx domain.Context, out string) bool {
	if check, ok := domain.OutputCheckFromContext(ctx); ok {
		return check(out) == nil
	}
	trimmed := strings.TrimSpace(out)
	return trimmed != "" && strings.ContainsAny(trimmed, "{[")
}

func (c *responseCache) put(k, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[k]; exists {
		c.m[k] = v
		return
	}
	if len(c.ord) >= c.capacity {
		old := c.ord[0]
		c.ord = c.ord[1:]
		delete(c.m, old)
	}
	c.m[k] = v
	c.ord = append(c.ord, k)
}

func keyFor(req domain.GenerateRequest) (string, bool) {
	// map keys marshal sorted, so equal schemas hash equally
	b, err := json.Marshal(req)
	if err != nil {
		return "", false
	}
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:]), true
}
