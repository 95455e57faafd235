package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/observability"
)

// Strategy is one tier of the fallback chain.
type Strategy interface {
	Tier() domain.SourceTier
	Attempt(ctx context.Context, req domain.ExtractionRequest) (domain.ExtractionResult, error)
}

// errHeuristicFailed marks an unexpected heuristic failure; it only advances to the empty tier.
var errHeuristicFailed = errors.New("heuristic failed")

// AIStrategy asks one provider through the gateway and normalizes its answer.
type AIStrategy struct {
	profile    *Profile
	gateway    *Gateway
	normalizer Normalizer
}

func (s *AIStrategy) Tier() domain.SourceTier { return domain.TierAI }

func (s *AIStrategy) Attempt(ctx context.Context, req domain.ExtractionRequest) (domain.ExtractionResult, error) {
	if s.profile.SkipAI != nil && s.profile.SkipAI(req) {
		return domain.ExtractionResult{}, &domain.GenerationServiceError{Provider: s.gateway.Provider(), Kind: domain.FailureSkipped}
	}
	call := s.profile.call(req)
	call.Accept = func(raw string) error {
		_, err := s.decode(raw)
		return err
	}
	raw, err := s.gateway.Invoke(ctx, call)
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	fields, err := s.decode(raw)
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	return domain.ExtractionResult{
		Task:     s.profile.Task,
		Fields:   s.profile.finalize(req, fields),
		Tier:     domain.TierAI,
		Provider: s.gateway.Provider(),
	}, nil
}

// decode normalizes raw output and checks it against the task's JSON Schema.
func (s *AIStrategy) decode(raw string) (map[string]any, error) {
	fields, err := s.normalizer.NormalizeRaw(raw, s.profile.Schema)
	if err != nil {
		return nil, err
	}
	if s.profile.JSON != nil {
		if err := s.profile.JSON.Validate(fields); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// HeuristicStrategy runs the profile's rule-based extraction.
type HeuristicStrategy struct {
	profile    *Profile
	normalizer Normalizer
}

func (s *HeuristicStrategy) Tier() domain.SourceTier { return domain.TierHeuristic }

func (s *HeuristicStrategy) Attempt(_ context.Context, req domain.ExtractionRequest) (res domain.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", errHeuristicFailed, r)
		}
	}()
	out, err := s.profile.Heuristic(req)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("%w: %v", errHeuristicFailed, err)
	}
	v, err := toValue(out)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("%w: %v", errHeuristicFailed, err)
	}
	fields, err := s.normalizer.Normalize(v, s.profile.Schema)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("%w: %v", errHeuristicFailed, err)
	}
	return domain.ExtractionResult{
		Task:   s.profile.Task,
		Fields: s.profile.finalize(req, fields),
		Tier:   domain.TierHeuristic,
	}, nil
}

// EmptyStrategy returns the schema's all-defaults value.
type EmptyStrategy struct {
	profile *Profile
}

func (s *EmptyStrategy) Tier() domain.SourceTier { return domain.TierEmpty }

func (s *EmptyStrategy) Attempt(_ context.Context, req domain.ExtractionRequest) (res domain.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			// finalizers are pure; on failure keep the bare defaults
			res = domain.ExtractionResult{Task: s.profile.Task, Fields: s.profile.Schema.Defaults(), Tier: domain.TierEmpty}
			err = nil
		}
	}()
	return domain.ExtractionResult{
		Task:   s.profile.Task,
		Fields: s.profile.finalize(req, s.profile.Schema.Defaults()),
		Tier:   domain.TierEmpty,
	}, nil
}

// Chain tries its strategies in order until one succeeds. No strategy is retried.
type Chain struct {
	task       domain.TaskKind
	strategies []Strategy
}

// NewChain assembles a chain for one task.
func NewChain(task domain.TaskKind, strategies ...Strategy) *Chain {
	return &Chain{task: task, strategies: strategies}
}

// Run walks the chain. Fallback-eligible failures advance to the next tier; any other error
// (caller contract, cancellation, storage) is returned unchanged.
func (c *Chain) Run(ctx context.Context, req domain.ExtractionRequest) (domain.ExtractionResult, error) {
	lg := observability.LoggerFromContext(ctx)
	var last error
	for i, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return domain.ExtractionResult{}, err
		}
		res, err := s.Attempt(ctx, req)
		if err == nil {
			if i > 0 {
				lg.Info("extraction fell back",
					slog.String("task", string(c.task)),
					slog.String("tier", string(res.Tier)),
					slog.Int("attempts", i+1),
					slog.Any("last_error", last))
			}
			return res, nil
		}
		if !advances(err) {
			return domain.ExtractionResult{}, err
		}
		lg.Debug("extraction tier failed",
			slog.String("task", string(c.task)),
			slog.String("tier", string(s.Tier())),
			slog.Any("error", err))
		last = err
	}
	return domain.ExtractionResult{}, fmt.Errorf("op=extraction.chain: %w: all tiers failed: %v", domain.ErrInternal, last)
}

func advances(err error) bool {
	if errors.Is(err, domain.ErrCallerContract) {
		return false
	}
	return domain.IsFallbackEligible(err) || errors.Is(err, errHeuristicFailed)
}
