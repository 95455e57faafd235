package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// InterviewService schedules interviews and keeps their notes.
type InterviewService struct {
	Interviews domain.InterviewRepository
	Candidates domain.CandidateRepository
	Jobs       domain.JobRepository
}

// NewInterviewService constructs an InterviewService.
func NewInterviewService(iv domain.InterviewRepository, c domain.CandidateRepository, j domain.JobRepository) InterviewService {
	return InterviewService{Interviews: iv, Candidates: c, Jobs: j}
}

// Create schedules an interview for an existing candidate and, optionally, job.
func (s InterviewService) Create(ctx domain.Context, iv domain.Interview) (domain.Interview, error) {
	iv.Interviewer = strings.TrimSpace(iv.Interviewer)
	if iv.JobID != nil && *iv.JobID == "" {
		iv.JobID = nil
	}
	if iv.CandidateID == "" || iv.ScheduledAt.IsZero() {
		return domain.Interview{}, fmt.Errorf("%w: candidate_id and scheduled_at are required", domain.ErrInvalidArgument)
	}
	if _, err := s.Candidates.Get(ctx, iv.CandidateID); err != nil {
		return domain.Interview{}, fmt.Errorf("op=interviews.Create: %w", err)
	}
	if err := s.checkJob(ctx, iv.JobID); err != nil {
		return domain.Interview{}, fmt.Errorf("op=interviews.Create: %w", err)
	}
	iv.CreatedAt = time.Now().UTC()
	id, err := s.Interviews.Create(ctx, iv)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interviews.Create: %w", err)
	}
	iv.ID = id
	return iv, nil
}

func (s InterviewService) checkJob(ctx domain.Context, jobID *string) error {
	if jobID == nil || *jobID == "" {
		return nil
	}
	_, err := s.Jobs.Get(ctx, *jobID)
	return err
}

// Get returns one interview.
func (s InterviewService) Get(ctx domain.Context, id string) (domain.Interview, error) {
	return s.Interviews.Get(ctx, id)
}

// List pages interviews by schedule.
func (s InterviewService) List(ctx domain.Context, p domain.ListParams) ([]domain.Interview, error) {
	return s.Interviews.List(ctx, p)
}

// ListByCandidate returns every interview of a candidate.
func (s InterviewService) ListByCandidate(ctx domain.Context, candidateID string) ([]domain.Interview, error) {
	if _, err := s.Candidates.Get(ctx, candidateID); err != nil {
		return nil, fmt.Errorf("op=interviews.ListByCandidate: %w", err)
	}
	return s.Interviews.ListByCandidate(ctx, candidateID)
}

// ListByJob returns every interview for a job.
func (s InterviewService) ListByJob(ctx domain.Context, jobID string) ([]domain.Interview, error) {
	if _, err := s.Jobs.Get(ctx, jobID); err != nil {
		return nil, fmt.Errorf("op=interviews.ListByJob: %w", err)
	}
	return s.Interviews.ListByJob(ctx, jobID)
}

// Update applies a partial update.
func (s InterviewService) Update(ctx domain.Context, id string, u domain.InterviewUpdate) (domain.Interview, error) {
	if u.JobID != nil && *u.JobID == "" {
		u.JobID = nil
	}
	if u.ScheduledAt != nil && u.ScheduledAt.IsZero() {
		return domain.Interview{}, fmt.Errorf("%w: scheduled_at must be a valid time", domain.ErrInvalidArgument)
	}
	if err := s.checkJob(ctx, u.JobID); err != nil {
		return domain.Interview{}, fmt.Errorf("op=interviews.Update: %w", err)
	}
	return s.Interviews.Update(ctx, id, u)
}

// UpdateNotes replaces the notes of an interview.
func (s InterviewService) UpdateNotes(ctx domain.Context, id, notes string) (domain.Interview, error) {
	if err := s.Interviews.UpdateNotes(ctx, id, strings.TrimSpace(notes)); err != nil {
		return domain.Interview{}, fmt.Errorf("op=interviews.UpdateNotes: %w", err)
	}
	return s.Interviews.Get(ctx, id)
}

// Delete removes an interview.
func (s InterviewService) Delete(ctx domain.Context, id string) error {
	return s.Interviews.Delete(ctx, id)
}
