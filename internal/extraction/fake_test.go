package extraction

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// fakeGenerator answers with a fixed reply or error and records the requests it saw.
type fakeGenerator struct {
	name  string
	reply string
	err   error
	delay time.Duration

	mu      sync.Mutex
	seen    []domain.GenerateRequest
	verdict []error
}

func (f *fakeGenerator) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeGenerator) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, req)
	if check, ok := domain.OutputCheckFromContext(ctx); ok {
		f.verdict = append(f.verdict, check(f.reply))
	}
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeGenerator) requests() []domain.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.GenerateRequest(nil), f.seen...)
}

// verdicts returns what the caller's output check said about each reply.
func (f *fakeGenerator) verdicts() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.verdict...)
}

var errUnavailable = errors.New("connection refused")

func failingPipeline() *Pipeline {
	gen := &fakeGenerator{err: errUnavailable}
	return NewPipeline(Options{Gateways: []*Gateway{NewGateway(gen, time.Second)}})
}

func pipelineWith(reply string) (*Pipeline, *fakeGenerator) {
	gen := &fakeGenerator{reply: reply}
	return NewPipeline(Options{Gateways: []*Gateway{NewGateway(gen, time.Second)}}), gen
}

// validRequest returns a request that passes every profile's caller contract.
func validRequest(task domain.TaskKind) domain.ExtractionRequest {
	return domain.ExtractionRequest{
		Task:           task,
		ResourceID:     "cand-1",
		Text:           sampleResume,
		JobTitle:       "Backend Engineer",
		JobDescription: "We need a Python and SQL engineer with Docker experience.",
		CandidateName:  "Jane Doe",
		InterviewNotes: []string{"Strong problem solver, excellent communication, impressive system design."},
		Questions:      domain.QuestionOptions{Count: 3},
	}
}

const sampleResume = `Jane Doe
jane.doe@example.com | +1 (555) 123-4567 | linkedin.com/in/janedoe | github.com/janedoe

Summary
Backend engineer with eight years building data platforms in Python and Go.

Skills: Python, Go, PostgreSQL, Docker, Kubernetes

Experience
Senior Engineer at Acme Corp, 2019 - 2024

Education
BSc Computer Science

Certifications
- AWS Certified Solutions Architect

Languages
English, Spanish
`
