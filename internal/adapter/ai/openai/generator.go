// Package openai implements domain.Generator with the official OpenAI SDK.
package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/ai/openrouter"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

const providerName = "openai"

// Generator sends one chat completion per call. SDK retries are disabled; the
// extraction chain decides what happens after a failure.
type Generator struct {
	client openai.Client
	model  string
	strict bool
	hasKey bool
}

// New builds a generator from configuration.
func New(cfg config.Config, opts ...option.RequestOption) *Generator {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
	}
	if cfg.OpenAIBaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return &Generator{
		client: openai.NewClient(append(base, opts...)...),
		model:  cfg.OpenAIModel,
		strict: cfg.OpenAIStrictSchema,
		hasKey: cfg.OpenAIAPIKey != "",
	}
}

// Name implements domain.Generator.
func (g *Generator) Name() string { return providerName }

// Generate implements domain.Generator. When req carries a schema the call asks
// for structured output, otherwise for a bare JSON object.
func (g *Generator) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	if !g.hasKey {
		return "", &domain.GenerationServiceError{Provider: providerName, Kind: domain.FailureAuth, Err: errors.New("OPENAI_API_KEY missing")}
	}
	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature:    openai.Float(req.Temperature),
		ResponseFormat: g.responseFormat(req),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &domain.GenerationServiceError{
				Provider: providerName,
				Kind:     openrouter.KindForStatus(apiErr.StatusCode),
				Status:   apiErr.StatusCode,
				Err:      err,
			}
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &domain.GenerationServiceError{Provider: providerName, Kind: domain.FailureEmpty}
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *Generator) responseFormat(req domain.GenerateRequest) openai.ChatCompletionNewParamsResponseFormatUnion {
	if req.Schema == nil {
		return openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &openai.ResponseFormatJSONObjectParam{}}
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   req.SchemaName,
				Schema: req.Schema,
				Strict: openai.Bool(g.strict),
			},
		},
	}
}
