package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/usecase"
)

func TestCandidateUpload_SubmitsInProcessParse(t *testing.T) {
	t.Parallel()
	repo := newMemCandidates()
	sub := &recordingSubmitter{}
	svc := usecase.NewCandidateService(repo, newMemJobs(), stubExtractor{text: "  Jane Doe\nGo engineer\x00 "}, &stubPipeline{}, nil, sub)

	c, err := svc.Upload(context.Background(), usecase.UploadInput{Name: " Jane Doe ", Email: "jane@example.com", FileName: "cv.txt", Path: "/tmp/x"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, "Jane Doe\nGo engineer", c.ResumeText)
	assert.Equal(t, domain.ParsePending, c.ParseStatus)
	assert.Equal(t, []string{c.ID}, sub.ids)
}

func TestCandidateUpload_QueueMarksProcessingBeforeEnqueue(t *testing.T) {
	t.Parallel()
	repo := newMemCandidates()
	q := &recordingQueue{}
	svc := usecase.NewCandidateService(repo, newMemJobs(), stubExtractor{text: "resume"}, &stubPipeline{}, q, &recordingSubmitter{})

	c, err := svc.Upload(context.Background(), usecase.UploadInput{Name: "A", FileName: "cv.pdf"})
	require.NoError(t, err)
	assert.Equal(t, domain.ParseProcessing, c.ParseStatus)
	assert.Equal(t, []string{c.ID}, q.ids)
}

func TestCandidateUpload_SchedulingFailureKeepsCandidate(t *testing.T) {
	t.Parallel()
	repo := newMemCandidates()
	q := &recordingQueue{err: errors.New("broker down")}
	svc := usecase.NewCandidateService(repo, newMemJobs(), stubExtractor{text: "resume"}, &stubPipeline{}, q, nil)

	c, err := svc.Upload(context.Background(), usecase.UploadInput{Name: "A", FileName: "cv.pdf"})
	require.NoError(t, err)
	assert.Equal(t, domain.ParseFailed, c.ParseStatus)
	assert.Equal(t, []domain.ParseStatus{domain.ParseProcessing, domain.ParseFailed}, repo.statuses)
}

func TestCandidateUpload_Rejections(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		ex   stubExtractor
		in   usecase.UploadInput
	}{
		{"missing name", stubExtractor{text: "resume"}, usecase.UploadInput{FileName: "cv.txt"}},
		{"no text", stubExtractor{text: " \x00 "}, usecase.UploadInput{Name: "A", FileName: "cv.txt"}},
		{"extractor rejects", stubExtractor{err: domain.ErrInvalidArgument}, usecase.UploadInput{Name: "A", FileName: "cv.exe"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := newMemCandidates()
			svc := usecase.NewCandidateService(repo, newMemJobs(), tc.ex, &stubPipeline{}, nil, &recordingSubmitter{})
			_, err := svc.Upload(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Empty(t, repo.rows)
		})
	}
}

func TestCandidateReparse(t *testing.T) {
	t.Parallel()
	sub := &recordingSubmitter{}
	svc := usecase.NewCandidateService(newMemCandidates(domain.Candidate{ID: "c1"}), newMemJobs(), nil, &stubPipeline{}, nil, sub)

	require.NoError(t, svc.Reparse(context.Background(), "c1"))
	assert.Equal(t, []string{"c1"}, sub.ids)
	assert.ErrorIs(t, svc.Reparse(context.Background(), "nope"), domain.ErrNotFound)
}

func TestCandidateRank_PersistsScore(t *testing.T) {
	t.Parallel()
	repo := newMemCandidates(domain.Candidate{ID: "c1", Name: "Jane", ResumeText: "Go and SQL"})
	jobs := newMemJobs(domain.Job{ID: "j1", Title: "Backend", Description: "Go, Kafka"})
	pipe := &stubPipeline{fields: map[string]any{"score": 72, "top_matches": []string{"go"}, "concerns": []string{"kafka"}, "reason": "partial"}}
	svc := usecase.NewCandidateService(repo, jobs, nil, pipe, nil, nil)

	got, err := svc.Rank(context.Background(), "j1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CandidateID)
	assert.Equal(t, "j1", got.JobID)
	assert.InDelta(t, 72.0, got.Score, 0.0001)
	assert.Equal(t, "partial", got.Details["reason"])
	assert.Equal(t, domain.TierHeuristic, got.Tier)

	stored, _ := repo.Get(context.Background(), "c1")
	require.NotNil(t, stored.Score)
	assert.InDelta(t, 72.0, *stored.Score, 0.0001)

	req := pipe.last()
	assert.Equal(t, domain.TaskRanking, req.Task)
	assert.Equal(t, "Go, Kafka", req.JobDescription)
	assert.Equal(t, "Go and SQL", req.Text)
}

func TestCandidateRank_NotFound(t *testing.T) {
	t.Parallel()
	svc := usecase.NewCandidateService(newMemCandidates(domain.Candidate{ID: "c1"}), newMemJobs(domain.Job{ID: "j1"}), nil, &stubPipeline{}, nil, nil)
	_, err := svc.Rank(context.Background(), "missing", "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Rank(context.Background(), "j1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCandidateOptimize(t *testing.T) {
	t.Parallel()
	repo := newMemCandidates(
		domain.Candidate{ID: "empty", Name: "E"},
		domain.Candidate{ID: "parsed", Name: "P", ParsedResume: map[string]any{
			"contact": map[string]any{"name": "Pat", "email": "pat@example.com"},
			"skills":  []any{"Go", "Postgres"},
		}},
		domain.Candidate{ID: "text", Name: "T", ResumeText: "Senior engineer"},
	)
	jobs := newMemJobs(domain.Job{ID: "j1", Title: "SRE", Description: "Kubernetes"})
	pipe := &stubPipeline{fields: map[string]any{"ats_score": 60, "recommended_keywords": []any{}, "missing_keywords": []string{"docker"}}}
	svc := usecase.NewCandidateService(repo, jobs, nil, pipe, nil, nil)
	ctx := context.Background()

	_, err := svc.Optimize(ctx, "empty", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Optimize(ctx, "parsed", "")
	require.NoError(t, err)
	assert.Contains(t, pipe.last().Text, "Skills: Go, Postgres")
	assert.Contains(t, pipe.last().Text, "Email: pat@example.com")

	res, err := svc.Optimize(ctx, "text", "j1")
	require.NoError(t, err)
	assert.Equal(t, 60, res.Fields["ats_score"])
	assert.Equal(t, "Kubernetes", pipe.last().JobDescription)

	_, err = svc.Optimize(ctx, "text", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCandidateKeywordSuggestions_OnlyKeywordFields(t *testing.T) {
	t.Parallel()
	pipe := &stubPipeline{fields: map[string]any{
		"ats_score":            55,
		"recommended_keywords": []any{map[string]any{"keyword": "Docker"}},
		"missing_keywords":     []string{"docker"},
	}}
	svc := usecase.NewCandidateService(newMemCandidates(domain.Candidate{ID: "c1", ResumeText: "resume"}), newMemJobs(), nil, pipe, nil, nil)

	res, err := svc.KeywordSuggestions(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.Len(t, res.Fields, 2)
	assert.Contains(t, res.Fields, "recommended_keywords")
	assert.NotContains(t, res.Fields, "ats_score")
}
