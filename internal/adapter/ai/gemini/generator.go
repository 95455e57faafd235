// Package gemini implements domain.Generator with Google's generative-ai-go SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/ai/openrouter"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

const providerName = "gemini"

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Generator asks one Gemini model for JSON output.
type Generator struct {
	client *genai.Client
	model  string
	// models builds the per-call model; replaced in tests.
	models func(req domain.GenerateRequest) contentGenerator
}

// New dials the Gemini API. The SDK client is safe for concurrent use and must be closed.
func New(ctx context.Context, cfg config.Config) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("op=gemini.New: GEMINI_API_KEY missing")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: %w", err)
	}
	g := &Generator{client: client, model: cfg.GeminiModel}
	g.models = g.configure
	return g, nil
}

func (g *Generator) configure(req domain.GenerateRequest) contentGenerator {
	m := g.client.GenerativeModel(g.model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens)) // #nosec G115 -- bounded by profile config
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	return m
}

// Name implements domain.Generator.
func (g *Generator) Name() string { return providerName }

// Close releases the SDK connection.
func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	resp, err := g.models(req).GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		if kind, code, ok := classify(err); ok {
			return "", &domain.GenerationServiceError{Provider: providerName, Kind: kind, Status: code, Err: err}
		}
		return "", err
	}
	text := textOf(resp)
	if text == "" {
		return "", &domain.GenerationServiceError{Provider: providerName, Kind: domain.FailureEmpty}
	}
	return text, nil
}

// classify maps SDK errors carrying a status to a failure kind. Other errors are left
// to the gateway, which separates deadlines from transport failures.
func classify(err error) (domain.GenerationFailure, int, bool) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return openrouter.KindForStatus(apiErr.Code), apiErr.Code, true
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return domain.FailureAuth, http.StatusUnauthorized, true
		case codes.ResourceExhausted:
			return domain.FailureRateLimit, http.StatusTooManyRequests, true
		case codes.DeadlineExceeded:
			return domain.FailureTimeout, 0, true
		case codes.Canceled:
			return "", 0, false
		}
		return domain.FailureUpstream, 0, true
	}
	return "", 0, false
}

func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String())
}
