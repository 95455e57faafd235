package extraction

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	obsmetrics "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/observability"
)

// Extractor is the single entry point of the pipeline.
type Extractor interface {
	Extract(ctx context.Context, req domain.ExtractionRequest) (domain.ExtractionResult, error)
}

// Pipeline routes requests to the chain of their task profile.
type Pipeline struct {
	profiles map[domain.TaskKind]*Profile
	chains   map[domain.TaskKind]*Chain
}

// Options configures a Pipeline.
type Options struct {
	// Gateways become AI tiers in the given order.
	Gateways  []*Gateway
	EnumMode  EnumMode
	Overrides config.ProfileFile
}

// NewPipeline builds every profile and its fallback chain.
func NewPipeline(opts Options) *Pipeline {
	mode := opts.EnumMode
	if opts.Overrides.EnumPolicy != "" {
		mode = ParseEnumMode(opts.Overrides.EnumPolicy)
	}
	p := &Pipeline{
		profiles: make(map[domain.TaskKind]*Profile),
		chains:   make(map[domain.TaskKind]*Chain),
	}
	for _, prof := range Profiles() {
		fieldModes := prof.Apply(opts.Overrides.Profiles[string(prof.Task)])
		norm := Normalizer{Policy: Policy{Enum: mode, EnumOverrides: fieldModes}}
		strategies := make([]Strategy, 0, len(opts.Gateways)+2)
		for _, gw := range opts.Gateways {
			strategies = append(strategies, &AIStrategy{profile: prof, gateway: gw, normalizer: norm})
		}
		strategies = append(strategies,
			&HeuristicStrategy{profile: prof, normalizer: norm},
			&EmptyStrategy{profile: prof},
		)
		p.profiles[prof.Task] = prof
		p.chains[prof.Task] = NewChain(prof.Task, strategies...)
	}
	return p
}

// Extract runs the fallback chain for req. It only fails on caller contract violations,
// cancellation, or errors from collaborators; extraction failures degrade to a lower tier.
func (p *Pipeline) Extract(ctx context.Context, req domain.ExtractionRequest) (domain.ExtractionResult, error) {
	prof, ok := p.profiles[req.Task]
	if !ok {
		return domain.ExtractionResult{}, &domain.CallerContractError{Field: "task", Reason: "unknown task kind " + string(req.Task)}
	}
	if prof.Validate != nil {
		if err := prof.Validate(req); err != nil {
			return domain.ExtractionResult{}, err
		}
	}

	tracer := otel.Tracer("extraction.pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.Extract")
	defer span.End()
	span.SetAttributes(attribute.String("extraction.task", string(req.Task)))

	res, err := p.chains[req.Task].Run(ctx, req)
	if err != nil {
		span.RecordError(err)
		return domain.ExtractionResult{}, err
	}
	span.SetAttributes(attribute.String("extraction.tier", string(res.Tier)))
	obsmetrics.ObserveExtraction(string(res.Task), string(res.Tier))
	observability.LoggerFromContext(ctx).Debug("extraction completed",
		slog.String("task", string(res.Task)),
		slog.String("tier", string(res.Tier)),
		slog.String("provider", res.Provider),
		slog.String("resource_id", req.ResourceID))
	return res, nil
}

// Profile returns the configured profile of a task.
func (p *Pipeline) Profile(task domain.TaskKind) (*Profile, bool) {
	prof, ok := p.profiles[task]
	return prof, ok
}
