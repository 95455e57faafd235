package extraction

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/ai/tokencount"
	obsmetrics "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/observability"
)

// DefaultTimeout bounds a generation call when the gateway is built without one.
const DefaultTimeout = 30 * time.Second

// Call is one prompt submission: instruction, budgeted sources and a renderer
// that places the truncated sources into the user prompt.
type Call struct {
	Task        domain.TaskKind
	System      string
	Sources     []Source
	Render      func(in map[string]string) string
	MaxTokens   int
	Temperature float64
	Schema      *JSONSchema
	// Accept, when set, tells caching wrappers whether the raw output is usable.
	Accept func(raw string) error
}

// Gateway makes a single bounded call to one generation provider. It never retries.
type Gateway struct {
	gen     domain.Generator
	timeout time.Duration
	tokens  *tokencount.Counter
	model   string
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithTokenCounter records prompt token estimates for model.
func WithTokenCounter(c *tokencount.Counter, model string) GatewayOption {
	return func(g *Gateway) { g.tokens, g.model = c, model }
}

// NewGateway wraps gen with an explicit per-call timeout.
func NewGateway(gen domain.Generator, timeout time.Duration, opts ...GatewayOption) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	g := &Gateway{gen: gen, timeout: timeout}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Provider names the wrapped generation client.
func (g *Gateway) Provider() string { return g.gen.Name() }

// Invoke truncates every source to its budget, renders the prompt and returns the raw output.
// Failures are reported as *domain.GenerationServiceError, except cancellation of ctx itself,
// which is returned unchanged.
func (g *Gateway) Invoke(ctx context.Context, call Call) (string, error) {
	provider := g.gen.Name()
	tracer := otel.Tracer("extraction.gateway")
	ctx, span := tracer.Start(ctx, "gateway.Invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", provider),
		attribute.String("ai.task", string(call.Task)),
		attribute.Int("ai.max_tokens", call.MaxTokens),
	)

	prompt := call.Render(bounded(call.Sources))
	if g.tokens != nil {
		n := g.tokens.ChatUsage(call.System, prompt, "", g.model).PromptTokens
		obsmetrics.AIPromptTokens.WithLabelValues(string(call.Task)).Observe(float64(n))
		span.SetAttributes(attribute.Int("ai.prompt_tokens", n))
	}

	req := domain.GenerateRequest{
		Task:        call.Task,
		System:      call.System,
		Prompt:      prompt,
		MaxTokens:   call.MaxTokens,
		Temperature: call.Temperature,
	}
	if call.Schema != nil {
		req.SchemaName, req.Schema = call.Schema.Name, call.Schema.Doc
	}

	cctx, cancel := context.WithTimeout(domain.ContextWithOutputCheck(ctx, call.Accept), g.timeout)
	defer cancel()
	start := time.Now()
	out, err := g.gen.Generate(cctx, req)
	dur := time.Since(start)

	if err == nil && strings.TrimSpace(out) == "" {
		err = &domain.GenerationServiceError{Provider: provider, Kind: domain.FailureEmpty}
	}
	if err != nil {
		if ctx.Err() != nil {
			obsmetrics.ObserveAIRequest(provider, string(call.Task), "cancelled", dur)
			span.SetStatus(codes.Error, "cancelled")
			return "", ctx.Err()
		}
		err = classify(cctx, provider, err)
		obsmetrics.ObserveAIRequest(provider, string(call.Task), "error", dur)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.LoggerFromContext(ctx).Warn("generation call failed",
			slog.String("provider", provider),
			slog.String("task", string(call.Task)),
			slog.Duration("duration", dur),
			slog.Any("error", err))
		return "", err
	}
	obsmetrics.ObserveAIRequest(provider, string(call.Task), "ok", dur)
	return out, nil
}

func classify(cctx context.Context, provider string, err error) error {
	var gse *domain.GenerationServiceError
	if errors.As(err, &gse) {
		return err
	}
	if errors.Is(cctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.GenerationServiceError{Provider: provider, Kind: domain.FailureTimeout, Err: err}
	}
	return &domain.GenerationServiceError{Provider: provider, Kind: domain.FailureTransport, Err: err}
}
