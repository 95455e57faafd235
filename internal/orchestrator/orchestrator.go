// Package orchestrator runs resume parses off the request path with a single
// writer per candidate.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	obsmetrics "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/extraction"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/observability"
)

const jobType = "resume_parse"

// StatusMarker records the background parse state of a candidate.
type StatusMarker interface {
	MarkParseStatus(ctx domain.Context, id string, status domain.ParseStatus) error
}

// entry serialises runs for one id. refs counts synchronous callers inside Process;
// running and pending describe the background loop.
type entry struct {
	run     sync.Mutex
	refs    int
	running bool
	pending bool
}

// Orchestrator coalesces parse requests per candidate. At most one run per id
// executes at a time, a run always reads the latest text, and its result is
// written by one atomic SetCurrentResult while the id is held.
type Orchestrator struct {
	store     domain.ResultStore
	status    StatusMarker
	extractor extraction.Extractor
	locker    Locker

	base   context.Context
	cancel context.CancelFunc
	closed atomic.Bool
	sem    chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*entry
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLocker adds a cross-process lock around every run.
func WithLocker(l Locker) Option { return func(o *Orchestrator) { o.locker = l } }

// WithStatus records processing and failed states; completion is written with the result.
func WithStatus(s StatusMarker) Option { return func(o *Orchestrator) { o.status = s } }

// New builds an orchestrator running at most workers background parses at once.
func New(store domain.ResultStore, ex extraction.Extractor, workers int, opts ...Option) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	base, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		store:     store,
		extractor: ex,
		base:      base,
		cancel:    cancel,
		sem:       make(chan struct{}, workers),
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit schedules a background parse of id. While a run for id is in flight any
// number of submissions collapse into one follow-up run.
func (o *Orchestrator) Submit(ctx context.Context, id string) error {
	ok, err := o.store.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("op=orchestrator.Submit: %w", err)
	}
	if !ok {
		return fmt.Errorf("op=orchestrator.Submit: %w", domain.ErrNotFound)
	}
	if o.closed.Load() {
		return fmt.Errorf("op=orchestrator.Submit: %w: orchestrator closed", domain.ErrConflict)
	}
	ctx = observability.ContextWithAttrs(ctx, slog.String("candidate_id", id))
	o.markStatus(ctx, id, domain.ParseProcessing)

	o.mu.Lock()
	e := o.acquire(id)
	if e.running {
		e.pending = true
		o.release(id, e)
		o.mu.Unlock()
		obsmetrics.CoalesceJob(jobType)
		return nil
	}
	e.running = true
	o.mu.Unlock()
	obsmetrics.EnqueueJob(jobType)

	o.wg.Add(1)
	go o.loop(observability.Carry(o.base, ctx), id, e)
	return nil
}

func (o *Orchestrator) loop(ctx context.Context, id string, e *entry) {
	defer o.wg.Done()
	for {
		select {
		case o.sem <- struct{}{}:
		case <-ctx.Done():
			o.finish(id, e)
			return
		}
		if err := o.run(ctx, id, e); err != nil && !errors.Is(err, context.Canceled) {
			observability.LoggerFromContext(ctx).Error("background parse failed", slog.Any("error", err))
		}
		<-o.sem

		if o.rerun(id, e) {
			continue
		}
		return
	}
}

// rerun consumes a pending follow-up or retires the loop. Both happen under
// o.mu so a Submit either sees running and is picked up here, or starts a new loop.
func (o *Orchestrator) rerun(id string, e *entry) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e.pending && !o.closed.Load() {
		e.pending = false
		return true
	}
	o.finishLocked(id, e)
	return false
}

func (o *Orchestrator) finish(id string, e *entry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finishLocked(id, e)
}

// finishLocked retires the background loop of id. Callers hold o.mu.
func (o *Orchestrator) finishLocked(id string, e *entry) {
	e.running, e.pending = false, false
	o.release(id, e)
}

// Process runs one parse of id synchronously, serialised with background runs of the same id.
func (o *Orchestrator) Process(ctx context.Context, id string) error {
	o.mu.Lock()
	e := o.acquire(id)
	e.refs++
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		e.refs--
		o.release(id, e)
		o.mu.Unlock()
	}()
	return o.run(ctx, id, e)
}

// acquire returns the entry of id, creating it. Callers hold o.mu.
func (o *Orchestrator) acquire(id string) *entry {
	e, ok := o.entries[id]
	if !ok {
		e = &entry{}
		o.entries[id] = e
	}
	return e
}

// release drops an idle entry. Callers hold o.mu.
func (o *Orchestrator) release(id string, e *entry) {
	if e.refs == 0 && !e.running && !e.pending && o.entries[id] == e {
		delete(o.entries, id)
	}
}

func (o *Orchestrator) run(ctx context.Context, id string, e *entry) (err error) {
	e.run.Lock()
	defer e.run.Unlock()

	tracer := otel.Tracer("orchestrator")
	ctx, span := tracer.Start(ctx, "orchestrator.run")
	defer span.End()
	span.SetAttributes(attribute.String("candidate.id", id))
	lg := observability.LoggerFromContext(ctx)
	start := time.Now()
	obsmetrics.StartProcessingJob(jobType)
	defer func() {
		if err != nil {
			span.RecordError(err)
			obsmetrics.FailJob(jobType)
			return
		}
		obsmetrics.CompleteJob(jobType)
	}()

	if o.locker != nil {
		unlock, err := o.locker.Acquire(ctx, id)
		if err != nil {
			return fmt.Errorf("op=orchestrator.run: lock: %w", err)
		}
		defer func() {
			if rerr := unlock(context.WithoutCancel(ctx)); rerr != nil {
				lg.Warn("parse lock release failed", slog.Any("error", rerr))
			}
		}()
	}

	res, err := o.store.GetResource(ctx, id)
	if err != nil {
		return fmt.Errorf("op=orchestrator.run: %w", err)
	}
	out, err := o.extractor.Extract(ctx, domain.ExtractionRequest{
		Task:       domain.TaskResumeParse,
		ResourceID: id,
		Text:       res.Text,
	})
	if err != nil {
		if ctx.Err() == nil {
			o.markStatus(context.WithoutCancel(ctx), id, domain.ParseFailed)
		}
		return fmt.Errorf("op=orchestrator.run: %w", err)
	}
	// no partial write once the caller has gone away
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.store.SetCurrentResult(ctx, id, out); err != nil {
		return fmt.Errorf("op=orchestrator.run: %w", err)
	}
	span.SetAttributes(attribute.String("extraction.tier", string(out.Tier)))
	lg.Info("resume parsed",
		slog.String("tier", string(out.Tier)),
		slog.String("provider", out.Provider),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (o *Orchestrator) markStatus(ctx context.Context, id string, s domain.ParseStatus) {
	if o.status == nil {
		return
	}
	if err := o.status.MarkParseStatus(ctx, id, s); err != nil {
		observability.LoggerFromContext(ctx).Warn("mark parse status failed",
			slog.String("status", string(s)), slog.Any("error", err))
	}
}

// Close stops accepting work, drops queued reruns and waits for in-flight runs.
// When ctx ends first the runs are cancelled and nothing partial is written.
func (o *Orchestrator) Close(ctx context.Context) error {
	o.closed.Store(true)
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		o.cancel()
		return nil
	case <-ctx.Done():
		o.cancel()
		<-done
		return ctx.Err()
	}
}

// Wait blocks until no background run is in flight. Used by tests and the CLI.
func (o *Orchestrator) Wait() { o.wg.Wait() }

// inflight reports the number of tracked ids.
func (o *Orchestrator) inflight() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}
