package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

type fakeCandidateRepo struct {
	domain.CandidateRepository
	mu        sync.Mutex
	stale     []string
	marked    map[string]domain.ParseStatus
	listErr   error
	markErr   error
	lastLimit int
}

func (r *fakeCandidateRepo) ListStaleParses(_ context.Context, _ time.Time, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []string
	for _, id := range r.stale {
		if _, done := r.marked[id]; !done {
			out = append(out, id)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCandidateRepo) MarkParseStatus(_ context.Context, id string, s domain.ParseStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	if r.marked == nil {
		r.marked = map[string]domain.ParseStatus{}
	}
	r.marked[id] = s
	return nil
}

func TestNewStaleParseSweeper(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewStaleParseSweeper(nil, time.Minute, time.Minute))
	s := NewStaleParseSweeper(&fakeCandidateRepo{}, 0, 0)
	require.NotNil(t, s)
	assert.Equal(t, 10*time.Minute, s.maxAge)
	assert.Equal(t, time.Minute, s.interval)
}

func TestStaleParseSweeper_MarksAcrossPages(t *testing.T) {
	t.Parallel()
	repo := &fakeCandidateRepo{}
	for i := 0; i < 150; i++ {
		repo.stale = append(repo.stale, fmt.Sprintf("c-%d", i))
	}
	s := NewStaleParseSweeper(repo, time.Minute, time.Minute)
	assert.Equal(t, 150, s.sweepOnce(context.Background()))
	for _, st := range repo.marked {
		assert.Equal(t, domain.ParseFailed, st)
	}
	assert.Equal(t, 100, repo.lastLimit)
}

func TestStaleParseSweeper_Errors(t *testing.T) {
	t.Parallel()
	s := NewStaleParseSweeper(&fakeCandidateRepo{listErr: errors.New("db down")}, time.Minute, time.Minute)
	assert.Equal(t, 0, s.sweepOnce(context.Background()))

	s = NewStaleParseSweeper(&fakeCandidateRepo{stale: []string{"x"}, markErr: errors.New("nope")}, time.Minute, time.Minute)
	assert.Equal(t, 0, s.sweepOnce(context.Background()))
}

func TestStaleParseSweeper_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	repo := &fakeCandidateRepo{stale: []string{"c-1"}}
	s := NewStaleParseSweeper(repo, time.Minute, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.marked["c-1"] == domain.ParseFailed
	}, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
