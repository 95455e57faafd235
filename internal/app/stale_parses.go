package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// StaleParseSweeper fails resume parses stuck in processing, e.g. after a worker crash,
// so they can be resubmitted.
type StaleParseSweeper struct {
	candidates domain.CandidateRepository
	maxAge     time.Duration
	interval   time.Duration
}

func NewStaleParseSweeper(candidates domain.CandidateRepository, maxAge, interval time.Duration) *StaleParseSweeper {
	if candidates == nil {
		return nil
	}
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &StaleParseSweeper{candidates: candidates, maxAge: maxAge, interval: interval}
}

func (s *StaleParseSweeper) Run(ctx context.Context) {
	if s == nil || s.candidates == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("stale parse sweeper stopping")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *StaleParseSweeper) sweepOnce(ctx context.Context) int {
	tracer := otel.Tracer("parses.sweeper")
	ctx, span := tracer.Start(ctx, "StaleParseSweeper.sweepOnce")
	defer span.End()

	const pageSize = 100
	cutoff := time.Now().Add(-s.maxAge)
	span.SetAttributes(attribute.Float64("parses.max_age_seconds", s.maxAge.Seconds()))

	marked := 0
	for {
		ids, err := s.candidates.ListStaleParses(ctx, cutoff, pageSize)
		if err != nil {
			span.RecordError(err)
			slog.Error("stale parse sweep failed to list candidates", slog.Any("error", err))
			break
		}
		failed := 0
		for _, id := range ids {
			if err := s.candidates.MarkParseStatus(ctx, id, domain.ParseFailed); err != nil {
				slog.Error("stale parse sweep failed to mark candidate", slog.String("candidate_id", id), slog.Any("error", err))
				continue
			}
			failed++
		}
		marked += failed
		// marked rows leave the processing set, so the next page starts over
		if len(ids) < pageSize || failed == 0 {
			break
		}
	}
	span.SetAttributes(attribute.Int("parses.marked_failed", marked))
	if marked > 0 {
		slog.Warn("stale parses marked failed", slog.Int("count", marked), slog.Duration("max_age", s.maxAge))
	}
	return marked
}
