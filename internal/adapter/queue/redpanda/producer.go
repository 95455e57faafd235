// Package redpanda carries resume parse tasks over Redpanda/Kafka.
//
// The producer publishes one transactional record per task keyed by candidate id,
// and the consumer hands each task to the orchestrator so queued parses keep the
// same single-writer discipline as in-process ones.
package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	obsmetrics "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/observability"
)

const (
	// DefaultTopic carries resume parse tasks.
	DefaultTopic = "resume-parse"
	jobType      = "resume_parse_queue"
)

// ParseTask is the record value of a queued parse.
type ParseTask struct {
	CandidateID string    `json:"candidate_id"`
	RequestID   string    `json:"request_id,omitempty"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// txClient is the part of *kgo.Client the producer uses.
type txClient interface {
	BeginTransaction() error
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	EndTransaction(ctx context.Context, commit kgo.TransactionEndTry) error
	Ping(ctx context.Context) error
	Close()
}

// Producer publishes parse tasks and implements domain.ParseQueue.
type Producer struct {
	client txClient
	topic  string
	// tx serialises transactions; a transactional client runs one at a time.
	tx chan struct{}
}

// NewProducer connects a transactional producer and makes sure the topic exists.
func NewProducer(ctx context.Context, brokers []string, topic, transactionalID string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.NewProducer: no seed brokers provided")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	if transactionalID == "" {
		transactionalID = "ai-recruit-assistant-producer"
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.TransactionalID(transactionalID),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1_000_000),
		kgo.WithHooks(tracingHooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.NewProducer: %w", err)
	}
	if err := createTopicIfNotExists(ctx, client, topic, 1, 1); err != nil {
		slog.Warn("ensure topic failed, it may already exist", slog.String("topic", topic), slog.Any("error", err))
	}
	slog.Info("redpanda producer ready", slog.Any("brokers", brokers), slog.String("topic", topic))
	return newProducer(client, topic), nil
}

func newProducer(client txClient, topic string) *Producer {
	return &Producer{client: client, topic: topic, tx: make(chan struct{}, 1)}
}

// EnqueueParse publishes a parse task for candidateID inside a transaction.
func (p *Producer) EnqueueParse(ctx context.Context, candidateID string) error {
	if candidateID == "" {
		return fmt.Errorf("op=redpanda.EnqueueParse: %w: empty candidate id", domain.ErrInvalidArgument)
	}
	select {
	case p.tx <- struct{}{}:
		defer func() { <-p.tx }()
	case <-ctx.Done():
		return ctx.Err()
	}

	b, err := json.Marshal(ParseTask{
		CandidateID: candidateID,
		RequestID:   observability.RequestIDFromContext(ctx),
		EnqueuedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("op=redpanda.EnqueueParse: marshal: %w", err)
	}
	record := &kgo.Record{
		Topic:   p.topic,
		Key:     []byte(candidateID),
		Value:   b,
		Headers: []kgo.RecordHeader{{Key: "candidate_id", Value: []byte(candidateID)}},
	}

	if err := p.client.BeginTransaction(); err != nil {
		return fmt.Errorf("op=redpanda.EnqueueParse: begin transaction: %w", err)
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if abortErr := p.client.EndTransaction(context.WithoutCancel(ctx), kgo.TryAbort); abortErr != nil {
			err = errors.Join(err, abortErr)
		}
		return fmt.Errorf("op=redpanda.EnqueueParse: produce: %w", err)
	}
	if err := p.client.EndTransaction(ctx, kgo.TryCommit); err != nil {
		return fmt.Errorf("op=redpanda.EnqueueParse: commit transaction: %w", err)
	}

	obsmetrics.EnqueueJob(jobType)
	observability.LoggerFromContext(ctx).Info("parse task enqueued",
		slog.String("candidate_id", candidateID), slog.String("topic", p.topic))
	return nil
}

// Ping checks that at least one broker answers; used by readiness.
func (p *Producer) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("op=redpanda.Ping: %w", err)
	}
	return nil
}

// Close releases the client.
func (p *Producer) Close() {
	p.client.Close()
}

func tracingHooks() []kgo.Hook {
	k := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))))
	return k.Hooks()
}
