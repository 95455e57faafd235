// Package openrouter implements domain.Generator against OpenRouter's OpenAI-compatible chat API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/service/freemodels"
)

const providerName = "openrouter"

// Client makes exactly one chat completion request per Generate call. Timeouts come from
// the caller's context, so the HTTP client itself has none.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	referer string
	title   string
	hc      *http.Client
	free    *freemodels.Service
}

// New constructs a client from configuration. Outbound requests are traced through otelhttp.
func New(cfg config.Config) *Client {
	hc := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	c := &Client{
		apiKey:  cfg.OpenRouterAPIKey,
		baseURL: strings.TrimRight(cfg.OpenRouterBaseURL, "/"),
		model:   cfg.OpenRouterModel,
		referer: cfg.OpenRouterReferer,
		title:   cfg.OpenRouterTitle,
		hc:      hc,
	}
	if cfg.OpenRouterFreeModels {
		c.free = freemodels.NewService(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.FreeModelsRefresh, hc)
	}
	return c
}

// Name implements domain.Generator.
func (c *Client) Name() string { return providerName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate implements domain.Generator.
func (c *Client) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	if c.apiKey == "" {
		return "", &domain.GenerationServiceError{Provider: providerName, Kind: domain.FailureAuth, Err: errors.New("OPENROUTER_API_KEY missing")}
	}
	model, err := c.pickModel(ctx)
	if err != nil {
		return "", &domain.GenerationServiceError{Provider: providerName, Kind: domain.FailureUpstream, Err: err}
	}

	body := chatRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("op=openrouter.Generate: %w", err)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("op=openrouter.Generate: %w", err)
	}
	r.Header.Set("Authorization", "Bearer "+c.apiKey)
	r.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		r.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		r.Header.Set("X-Title", c.title)
	}

	resp, err := c.hc.Do(r)
	if err != nil {
		// the gateway tells deadline and cancellation apart
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := readSnippet(resp.Body, 512)
		slog.Warn("ai provider non-2xx",
			slog.String("provider", providerName),
			slog.String("model", model),
			slog.Int("status", resp.StatusCode),
			slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
			slog.String("body", snippet))
		return "", &domain.GenerationServiceError{
			Provider: providerName,
			Kind:     KindForStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Err:      errors.New(snippet),
		}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &domain.GenerationServiceError{Provider: providerName, Kind: domain.FailureUpstream, Err: fmt.Errorf("decode: %w", err)}
	}
	if len(out.Choices) == 0 {
		return "", &domain.GenerationServiceError{Provider: providerName, Kind: domain.FailureEmpty}
	}
	if out.Model != "" && out.Model != model {
		slog.Debug("model substitution detected", slog.String("requested_model", model), slog.String("actual_model", out.Model))
	}
	return out.Choices[0].Message.Content, nil
}

func (c *Client) pickModel(ctx context.Context) (string, error) {
	if c.free == nil {
		return c.model, nil
	}
	return c.free.First(ctx)
}

// KindForStatus maps an HTTP status from an OpenAI-compatible API to a failure kind.
func KindForStatus(status int) domain.GenerationFailure {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.FailureAuth
	case status == http.StatusTooManyRequests:
		return domain.FailureRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return domain.FailureTimeout
	}
	return domain.FailureUpstream
}

// readSnippet reads up to n bytes from r.
func readSnippet(r io.Reader, n int64) string {
	if r == nil || n <= 0 {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, n))
	return string(b)
}
