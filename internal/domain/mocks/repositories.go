// Package mocks holds testify/mock doubles of the domain ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// T is the subset of testing.T the constructors need.
type T interface {
	mock.TestingT
	Cleanup(func())
}

// CandidateRepository mocks domain.CandidateRepository.
type CandidateRepository struct{ mock.Mock }

// NewCandidateRepository registers expectation checks on t's cleanup.
func NewCandidateRepository(t T) *CandidateRepository {
	m := &CandidateRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CandidateRepository) Create(ctx context.Context, c domain.Candidate) (string, error) {
	ret := m.Called(ctx, c)
	return ret.String(0), ret.Error(1)
}

func (m *CandidateRepository) Get(ctx context.Context, id string) (domain.Candidate, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(domain.Candidate), ret.Error(1)
}

func (m *CandidateRepository) List(ctx context.Context, p domain.ListParams) ([]domain.Candidate, error) {
	ret := m.Called(ctx, p)
	out, _ := ret.Get(0).([]domain.Candidate)
	return out, ret.Error(1)
}

func (m *CandidateRepository) UpdateScore(ctx context.Context, id string, score float64) error {
	return m.Called(ctx, id, score).Error(0)
}

func (m *CandidateRepository) MarkParseStatus(ctx context.Context, id string, status domain.ParseStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *CandidateRepository) ListStaleParses(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
	ret := m.Called(ctx, olderThan, limit)
	out, _ := ret.Get(0).([]string)
	return out, ret.Error(1)
}

// JobRepository mocks domain.JobRepository.
type JobRepository struct{ mock.Mock }

// NewJobRepository registers expectation checks on t's cleanup.
func NewJobRepository(t T) *JobRepository {
	m := &JobRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *JobRepository) Create(ctx context.Context, j domain.Job) (string, error) {
	ret := m.Called(ctx, j)
	return ret.String(0), ret.Error(1)
}

func (m *JobRepository) Get(ctx context.Context, id string) (domain.Job, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(domain.Job), ret.Error(1)
}

func (m *JobRepository) List(ctx context.Context, p domain.ListParams) ([]domain.Job, error) {
	ret := m.Called(ctx, p)
	out, _ := ret.Get(0).([]domain.Job)
	return out, ret.Error(1)
}

// InterviewRepository mocks domain.InterviewRepository.
type InterviewRepository struct{ mock.Mock }

// NewInterviewRepository registers expectation checks on t's cleanup.
func NewInterviewRepository(t T) *InterviewRepository {
	m := &InterviewRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *InterviewRepository) Create(ctx context.Context, iv domain.Interview) (string, error) {
	ret := m.Called(ctx, iv)
	return ret.String(0), ret.Error(1)
}

func (m *InterviewRepository) Get(ctx context.Context, id string) (domain.Interview, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(domain.Interview), ret.Error(1)
}

func (m *InterviewRepository) List(ctx context.Context, p domain.ListParams) ([]domain.Interview, error) {
	ret := m.Called(ctx, p)
	out, _ := ret.Get(0).([]domain.Interview)
	return out, ret.Error(1)
}

func (m *InterviewRepository) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Interview, error) {
	ret := m.Called(ctx, candidateID)
	out, _ := ret.Get(0).([]domain.Interview)
	return out, ret.Error(1)
}

func (m *InterviewRepository) ListByJob(ctx context.Context, jobID string) ([]domain.Interview, error) {
	ret := m.Called(ctx, jobID)
	out, _ := ret.Get(0).([]domain.Interview)
	return out, ret.Error(1)
}

func (m *InterviewRepository) Update(ctx context.Context, id string, u domain.InterviewUpdate) (domain.Interview, error) {
	ret := m.Called(ctx, id, u)
	return ret.Get(0).(domain.Interview), ret.Error(1)
}

func (m *InterviewRepository) UpdateNotes(ctx context.Context, id, notes string) error {
	return m.Called(ctx, id, notes).Error(0)
}

func (m *InterviewRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var (
	_ domain.CandidateRepository = (*CandidateRepository)(nil)
	_ domain.JobRepository       = (*JobRepository)(nil)
	_ domain.InterviewRepository = (*InterviewRepository)(nil)
)
