package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/usecase"
)

func TestJobCreate(t *testing.T) {
	t.Parallel()
	repo := newMemJobs()
	svc := usecase.NewJobService(repo)

	j, err := svc.Create(context.Background(), " Backend ", "<p>Build <b>APIs</b></p><ul><li>Go</li></ul>")
	require.NoError(t, err)
	assert.Equal(t, "Backend", j.Title)
	assert.Equal(t, "Build APIs\n- Go", j.Description)
	assert.NotEmpty(t, j.ID)

	_, err = svc.Create(context.Background(), "", "desc")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.Create(context.Background(), "T", "<p> </p>")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.Create(context.Background(), "T", strings.Repeat("a", 20001))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func newInterviewService(ivs ...domain.Interview) (usecase.InterviewService, *memInterviews) {
	repo := newMemInterviews(ivs...)
	return usecase.NewInterviewService(repo, newMemCandidates(domain.Candidate{ID: "c1"}), newMemJobs(domain.Job{ID: "j1"})), repo
}

func TestInterviewCreate(t *testing.T) {
	t.Parallel()
	svc, _ := newInterviewService()
	when := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	empty, unknown, job := "", "j9", "j1"

	cases := []struct {
		name    string
		in      domain.Interview
		wantErr error
	}{
		{"with job", domain.Interview{CandidateID: "c1", JobID: &job, ScheduledAt: when, Interviewer: " Ann "}, nil},
		{"empty job id is dropped", domain.Interview{CandidateID: "c1", JobID: &empty, ScheduledAt: when}, nil},
		{"missing schedule", domain.Interview{CandidateID: "c1"}, domain.ErrInvalidArgument},
		{"unknown candidate", domain.Interview{CandidateID: "c9", ScheduledAt: when}, domain.ErrNotFound},
		{"unknown job", domain.Interview{CandidateID: "c1", JobID: &unknown, ScheduledAt: when}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			iv, err := svc.Create(context.Background(), tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, iv.ID)
			assert.False(t, iv.CreatedAt.IsZero())
			if tc.in.JobID != nil && *tc.in.JobID == "" {
				assert.Nil(t, iv.JobID)
			}
		})
	}
}

func TestInterviewNotesUpdateAndDelete(t *testing.T) {
	t.Parallel()
	svc, repo := newInterviewService(domain.Interview{ID: "iv1", CandidateID: "c1", ScheduledAt: time.Now()})
	ctx := context.Background()

	iv, err := svc.UpdateNotes(ctx, "iv1", "  strong Go skills  ")
	require.NoError(t, err)
	assert.Equal(t, "strong Go skills", iv.Notes)

	who := "Bob"
	iv, err = svc.Update(ctx, "iv1", domain.InterviewUpdate{Interviewer: &who})
	require.NoError(t, err)
	assert.Equal(t, "Bob", iv.Interviewer)

	var zero time.Time
	_, err = svc.Update(ctx, "iv1", domain.InterviewUpdate{ScheduledAt: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	require.NoError(t, svc.Delete(ctx, "iv1"))
	assert.Empty(t, repo.rows)
	assert.ErrorIs(t, svc.Delete(ctx, "iv1"), domain.ErrNotFound)
}

func TestInterviewListings(t *testing.T) {
	t.Parallel()
	job := "j1"
	svc, _ := newInterviewService(
		domain.Interview{ID: "a", CandidateID: "c1", JobID: &job, ScheduledAt: time.Unix(200, 0)},
		domain.Interview{ID: "b", CandidateID: "c1", ScheduledAt: time.Unix(100, 0)},
	)
	ctx := context.Background()

	byCandidate, err := svc.ListByCandidate(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, byCandidate, 2)
	assert.Equal(t, "b", byCandidate[0].ID)

	byJob, err := svc.ListByJob(ctx, "j1")
	require.NoError(t, err)
	require.Len(t, byJob, 1)
	assert.Equal(t, "a", byJob[0].ID)

	_, err = svc.ListByCandidate(ctx, "c9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.ListByJob(ctx, "j9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
