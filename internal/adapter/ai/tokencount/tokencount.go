// Package tokencount estimates prompt and completion sizes for generation calls.
//
// Encodings are loaded from the embedded offline BPE loader so counting never
// reaches the network.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
}

// Usage is the token footprint of one generation call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	Model            string
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

// Counter counts tokens with per-encoding caching. Safe for concurrent use.
type Counter struct {
	mu    sync.RWMutex
	cache map[string]*tiktoken.Tiktoken
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{cache: make(map[string]*tiktoken.Tiktoken)}
}

func (c *Counter) encoding(model string) (*tiktoken.Tiktoken, error) {
	name := encodingName(model)
	c.mu.RLock()
	enc, ok := c.cache[name]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, err
	}
	c.cache[name] = enc
	return enc, nil
}

// encodingName maps a model id to a tiktoken encoding. Non-OpenAI models are approximated with cl100k_base.
func encodingName(model string) string {
	model = strings.ToLower(model)
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	switch {
	case strings.HasPrefix(model, "gpt-4o"), strings.HasPrefix(model, "gpt-4.1"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return "o200k_base"
	default:
		return "cl100k_base"
	}
}

// Count returns the number of tokens in text, or a 4-chars-per-token estimate when no encoding is available.
func (c *Counter) Count(text, model string) int {
	enc, err := c.encoding(model)
	if err != nil {
		slog.Debug("token encoding unavailable, estimating", slog.String("model", model), slog.Any("error", err))
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// ChatUsage counts a system+user prompt pair and the completion, including per-message overhead.
func (c *Counter) ChatUsage(system, prompt, completion, model string) Usage {
	const perMessage = 4
	const replyPriming = 3
	return Usage{
		PromptTokens:     c.Count(system, model) + c.Count(prompt, model) + 2*perMessage + replyPriming,
		CompletionTokens: c.Count(completion, model),
		Model:            model,
	}
}
