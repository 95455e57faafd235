package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	obsmetrics "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/observability"
)

// Processor runs one resume parse synchronously.
type Processor interface {
	Process(ctx context.Context, candidateID string) error
}

// pollClient is the part of *kgo.Client the consumer uses.
type pollClient interface {
	PollFetches(ctx context.Context) kgo.Fetches
	MarkCommitRecords(rs ...*kgo.Record)
	CommitMarkedOffsets(ctx context.Context) error
	Close()
}

// Consumer reads parse tasks from a consumer group and runs them with bounded concurrency.
type Consumer struct {
	client         pollClient
	proc           Processor
	maxConcurrency int
	errorBackoff   time.Duration
	closeOnce      sync.Once
}

// NewConsumer joins group on topic. Only committed transactional records are read.
func NewConsumer(ctx context.Context, brokers []string, topic, group string, proc Processor, maxConcurrency int) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: no seed brokers provided")
	}
	if group == "" {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: missing consumer group")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.FetchIsolationLevel(kgo.ReadCommitted()),
		kgo.RequireStableFetchOffsets(),
		kgo.WithHooks(tracingHooks()...),
		kgo.DialTimeout(10*time.Second),
		kgo.SessionTimeout(30*time.Second),
		kgo.HeartbeatInterval(3*time.Second),
		kgo.FetchMaxWait(5*time.Second),
		kgo.AutoCommitMarks(),
		kgo.AutoCommitInterval(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: %w", err)
	}
	if err := createTopicIfNotExists(ctx, client, topic, 1, 1); err != nil {
		slog.Warn("ensure topic failed, it may already exist", slog.String("topic", topic), slog.Any("error", err))
	}
	slog.Info("redpanda consumer ready",
		slog.String("topic", topic), slog.String("group_id", group), slog.Int("max_concurrency", maxConcurrency))
	return newConsumer(client, proc, maxConcurrency), nil
}

func newConsumer(client pollClient, proc Processor, maxConcurrency int) *Consumer {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Consumer{client: client, proc: proc, maxConcurrency: maxConcurrency, errorBackoff: time.Second}
}

// Run polls until ctx ends or the client is closed. Records are marked for
// commit once their batch is handled; a batch interrupted by shutdown is left
// unmarked so the group redelivers it.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if fetches.IsClientClosed() {
			return nil
		}

		failed := false
		fetches.EachError(func(topic string, partition int32, err error) {
			failed = true
			slog.Error("fetch error", slog.String("topic", topic), slog.Int("partition", int(partition)), slog.Any("error", err))
		})

		records := fetches.Records()
		if len(records) == 0 {
			if failed {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.errorBackoff):
				}
			}
			continue
		}
		if done := c.handle(ctx, records); len(done) > 0 {
			c.client.MarkCommitRecords(done...)
		}
	}
}

// handle processes records concurrently and returns the ones safe to commit.
func (c *Consumer) handle(ctx context.Context, records []*kgo.Record) []*kgo.Record {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)
	for _, rec := range records {
		g.Go(func() error {
			c.handleRecord(gctx, rec)
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return records
}

func (c *Consumer) handleRecord(ctx context.Context, rec *kgo.Record) {
	var task ParseTask
	if err := json.Unmarshal(rec.Value, &task); err != nil || task.CandidateID == "" {
		slog.Error("dropping malformed parse task",
			slog.String("topic", rec.Topic), slog.Int("partition", int(rec.Partition)),
			slog.Int64("offset", rec.Offset), slog.Any("error", err))
		return
	}

	var opts []trace.SpanStartOption
	if rec.Context != nil {
		opts = append(opts, trace.WithLinks(trace.LinkFromContext(rec.Context)))
	}
	ctx, span := otel.Tracer("queue.consumer").Start(ctx, "ProcessParseTask", opts...)
	defer span.End()
	span.SetAttributes(attribute.String("candidate.id", task.CandidateID), attribute.Int64("kafka.offset", rec.Offset))

	attrs := []any{slog.String("candidate_id", task.CandidateID), slog.Int64("offset", rec.Offset)}
	if task.RequestID != "" {
		ctx = observability.ContextWithRequestID(ctx, task.RequestID)
		attrs = append(attrs, slog.String("request_id", task.RequestID))
	}
	ctx = observability.ContextWithAttrs(ctx, attrs...)
	lg := observability.LoggerFromContext(ctx)

	obsmetrics.StartProcessingJob(jobType)
	err := c.proc.Process(ctx, task.CandidateID)
	switch {
	case err == nil:
		obsmetrics.CompleteJob(jobType)
		lg.Info("parse task processed", slog.Duration("queue_latency", time.Since(task.EnqueuedAt)))
	case errors.Is(err, domain.ErrNotFound):
		obsmetrics.FailJob(jobType)
		lg.Warn("parse task for unknown candidate dropped")
	default:
		span.RecordError(err)
		obsmetrics.FailJob(jobType)
		if ctx.Err() == nil {
			lg.Error("parse task failed", slog.Any("error", err))
		}
	}
}

// Close commits marked offsets and leaves the group.
func (c *Consumer) Close() {
	c.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.client.CommitMarkedOffsets(ctx); err != nil {
			slog.Warn("commit marked offsets on close failed", slog.Any("error", err))
		}
		c.client.Close()
	})
}
