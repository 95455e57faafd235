package usecase

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/pkg/textx"
)

const maxJobDescriptionChars = 20000

// JobService manages open positions.
type JobService struct {
	Jobs domain.JobRepository
}

// NewJobService constructs a JobService with the given repo.
func NewJobService(r domain.JobRepository) JobService { return JobService{Jobs: r} }

// Create stores a job. Descriptions pasted as HTML are reduced to plain text.
func (s JobService) Create(ctx domain.Context, title, description string) (domain.Job, error) {
	title = strings.TrimSpace(title)
	description = textx.HTMLToText(description)
	if title == "" || description == "" {
		return domain.Job{}, fmt.Errorf("%w: title and description are required", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(description) > maxJobDescriptionChars {
		return domain.Job{}, fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidArgument, maxJobDescriptionChars)
	}
	j := domain.Job{Title: title, Description: description, CreatedAt: time.Now().UTC()}
	id, err := s.Jobs.Create(ctx, j)
	if err != nil {
		return domain.Job{}, fmt.Errorf("op=jobs.Create: %w", err)
	}
	j.ID = id
	return j, nil
}

// Get returns one job.
func (s JobService) Get(ctx domain.Context, id string) (domain.Job, error) {
	return s.Jobs.Get(ctx, id)
}

// List pages jobs, newest first.
func (s JobService) List(ctx domain.Context, p domain.ListParams) ([]domain.Job, error) {
	return s.Jobs.List(ctx, p)
}
