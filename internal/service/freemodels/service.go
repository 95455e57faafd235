// Package freemodels discovers zero-priced models from the OpenRouter catalogue.
package freemodels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Model represents a model from the OpenRouter API.
type Model struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Pricing Pricing `json:"pricing"`
}

// Pricing holds per-unit prices as decimal strings.
type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Request    string `json:"request"`
	Image      string `json:"image"`
}

type modelsResponse struct {
	Data []Model `json:"data"`
}

// excludedPatterns drops router aliases and model families that are never free.
var excludedPatterns = []string{
	"auto", "gpt-4", "gpt-5", "claude-3", "gemini-pro", "mistral-large",
	"mixtral-8x", "llama-2-70b", "llama-2-13b", "command-",
}

// Service caches the free model list and refreshes it after refreshDur.
type Service struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	refreshDur time.Duration

	mu        sync.Mutex
	models    []Model
	lastFetch time.Time
}

// NewService creates a free models service. A nil client uses a 30s default.
func NewService(apiKey, baseURL string, refreshDur time.Duration, hc *http.Client) *Service {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc, refreshDur: refreshDur}
}

// GetFreeModels returns the cached list, fetching it when stale. A failed refresh
// keeps serving the previous list.
func (s *Service) GetFreeModels(ctx context.Context) ([]Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.models != nil && time.Since(s.lastFetch) <= s.refreshDur {
		return s.models, nil
	}
	models, err := s.fetch(ctx)
	if err != nil {
		if s.models != nil {
			slog.Warn("using cached free models after refresh failure", slog.Any("error", err), slog.Int("cached", len(s.models)))
			return s.models, nil
		}
		return nil, err
	}
	s.models, s.lastFetch = models, time.Now()
	slog.Info("fetched free models", slog.Int("count", len(models)))
	return models, nil
}

// First returns the ID of the first free model.
func (s *Service) First(ctx context.Context) (string, error) {
	models, err := s.GetFreeModels(ctx)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", fmt.Errorf("op=freemodels.First: no free models available")
	}
	return models[0].ID, nil
}

func (s *Service) fetch(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("op=freemodels.fetch: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("op=freemodels.fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("op=freemodels.fetch: status %d: %s", resp.StatusCode, string(body))
	}
	var out modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("op=freemodels.fetch: decode: %w", err)
	}
	free := make([]Model, 0, len(out.Data))
	for _, m := range out.Data {
		if IsFree(m) {
			free = append(free, m)
		}
	}
	return free, nil
}

// IsFree reports whether every price of m is zero and m is not an excluded alias.
func IsFree(m Model) bool {
	id := strings.ToLower(m.ID)
	for _, p := range excludedPatterns {
		if strings.Contains(id, p) {
			return false
		}
	}
	for _, price := range []string{m.Pricing.Prompt, m.Pricing.Completion, m.Pricing.Request, m.Pricing.Image} {
		if price != "" && price != "0" && price != "0.0" {
			return false
		}
	}
	return true
}
