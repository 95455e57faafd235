// Package usecase implements the application services behind the HTTP API:
// candidate intake and ranking, jobs, interviews and the AI interview tools.
package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	obsmetrics "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/extraction"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/pkg/textx"
)

// ParseSubmitter schedules an in-process background parse.
type ParseSubmitter interface {
	Submit(ctx domain.Context, candidateID string) error
}

// CandidateService ingests resumes and runs the candidate scoped extraction tasks.
// Queue takes precedence over Parses when both are set.
type CandidateService struct {
	Candidates domain.CandidateRepository
	Jobs       domain.JobRepository
	Extractor  domain.TextExtractor
	Pipeline   extraction.Extractor
	Queue      domain.ParseQueue
	Parses     ParseSubmitter
}

// NewCandidateService constructs a CandidateService. Exactly one of queue and parses is normally non-nil.
func NewCandidateService(c domain.CandidateRepository, j domain.JobRepository, ex domain.TextExtractor, p extraction.Extractor, queue domain.ParseQueue, parses ParseSubmitter) CandidateService {
	return CandidateService{Candidates: c, Jobs: j, Extractor: ex, Pipeline: p, Queue: queue, Parses: parses}
}

// UploadInput describes a resume staged on disk by the transport layer.
type UploadInput struct {
	Name     string
	Email    string
	Phone    string
	FileName string
	Path     string
}

// Upload extracts the resume text, stores the candidate and schedules its parse.
// A scheduling failure leaves the candidate stored with a failed parse status.
func (s CandidateService) Upload(ctx domain.Context, in UploadInput) (domain.Candidate, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Candidate{}, fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	text, err := s.Extractor.ExtractPath(ctx, in.FileName, in.Path)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("op=candidates.Upload: %w", err)
	}
	text = textx.SanitizeText(text)
	if text == "" {
		return domain.Candidate{}, fmt.Errorf("%w: no text could be extracted from %s", domain.ErrInvalidArgument, in.FileName)
	}

	now := time.Now().UTC()
	id, err := s.Candidates.Create(ctx, domain.Candidate{
		Name:        name,
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		ResumeText:  text,
		ParseStatus: domain.ParsePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("op=candidates.Upload: %w", err)
	}
	if err := s.scheduleParse(ctx, id); err != nil {
		observability.LoggerFromContext(ctx).Error("resume parse scheduling failed",
			slog.String("candidate_id", id), slog.Any("error", err))
		_ = s.Candidates.MarkParseStatus(ctx, id, domain.ParseFailed)
	}
	return s.Candidates.Get(ctx, id)
}

// Reparse schedules a new background parse of an existing candidate.
func (s CandidateService) Reparse(ctx domain.Context, id string) error {
	if _, err := s.Candidates.Get(ctx, id); err != nil {
		return fmt.Errorf("op=candidates.Reparse: %w", err)
	}
	if err := s.scheduleParse(ctx, id); err != nil {
		return fmt.Errorf("op=candidates.Reparse: %w", err)
	}
	return nil
}

func (s CandidateService) scheduleParse(ctx domain.Context, id string) error {
	switch {
	case s.Queue != nil:
		if err := s.Candidates.MarkParseStatus(ctx, id, domain.ParseProcessing); err != nil {
			return err
		}
		return s.Queue.EnqueueParse(ctx, id)
	case s.Parses != nil:
		return s.Parses.Submit(ctx, id)
	}
	return fmt.Errorf("%w: no parse backend configured", domain.ErrInternal)
}

// Get returns one candidate.
func (s CandidateService) Get(ctx domain.Context, id string) (domain.Candidate, error) {
	return s.Candidates.Get(ctx, id)
}

// List pages candidates, newest first.
func (s CandidateService) List(ctx domain.Context, p domain.ListParams) ([]domain.Candidate, error) {
	return s.Candidates.List(ctx, p)
}

// RankResult is the outcome of scoring one candidate against one job.
type RankResult struct {
	CandidateID string
	JobID       string
	Score       float64
	Details     map[string]any
	Tier        domain.SourceTier
	Provider    string
}

// Rank scores a candidate against a job and stores the score on the candidate.
func (s CandidateService) Rank(ctx domain.Context, jobID, candidateID string) (RankResult, error) {
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return RankResult{}, fmt.Errorf("op=candidates.Rank: %w", err)
	}
	c, err := s.Candidates.Get(ctx, candidateID)
	if err != nil {
		return RankResult{}, fmt.Errorf("op=candidates.Rank: %w", err)
	}

	res, err := s.Pipeline.Extract(ctx, domain.ExtractionRequest{
		Task:             domain.TaskRanking,
		ResourceID:       c.ID,
		Text:             c.ResumeText,
		JobTitle:         job.Title,
		JobDescription:   job.Description,
		CandidateName:    c.Name,
		CandidateProfile: c.ParsedResume,
	})
	if err != nil {
		return RankResult{}, fmt.Errorf("op=candidates.Rank: %w", err)
	}
	score, _ := toFloat(res.Fields["score"])
	if err := s.Candidates.UpdateScore(ctx, c.ID, score); err != nil {
		return RankResult{}, fmt.Errorf("op=candidates.Rank: %w", err)
	}
	obsmetrics.ObserveRankingScore(score)
	return RankResult{
		CandidateID: c.ID,
		JobID:       job.ID,
		Score:       score,
		Details:     res.Fields,
		Tier:        res.Tier,
		Provider:    res.Provider,
	}, nil
}

// Optimize runs the ATS audit of a candidate's resume, against a job when jobID is set.
func (s CandidateService) Optimize(ctx domain.Context, candidateID, jobID string) (domain.ExtractionResult, error) {
	c, err := s.Candidates.Get(ctx, candidateID)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("op=candidates.Optimize: %w", err)
	}
	text := strings.TrimSpace(c.ResumeText)
	if text == "" {
		text = resumeFromParsed(c.ParsedResume)
	}
	if text == "" {
		return domain.ExtractionResult{}, fmt.Errorf("%w: no resume data available for this candidate", domain.ErrInvalidArgument)
	}
	req := domain.ExtractionRequest{
		Task:          domain.TaskResumeOptimize,
		ResourceID:    c.ID,
		Text:          text,
		CandidateName: c.Name,
	}
	if jobID != "" {
		job, err := s.Jobs.Get(ctx, jobID)
		if err != nil {
			return domain.ExtractionResult{}, fmt.Errorf("op=candidates.Optimize: %w", err)
		}
		req.JobTitle, req.JobDescription = job.Title, job.Description
	}
	res, err := s.Pipeline.Extract(ctx, req)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("op=candidates.Optimize: %w", err)
	}
	return res, nil
}

// KeywordSuggestions returns only the keyword recommendations of the ATS audit.
func (s CandidateService) KeywordSuggestions(ctx domain.Context, candidateID, jobID string) (domain.ExtractionResult, error) {
	res, err := s.Optimize(ctx, candidateID, jobID)
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	res.Fields = map[string]any{
		"recommended_keywords": res.Fields["recommended_keywords"],
		"missing_keywords":     res.Fields["missing_keywords"],
	}
	return res, nil
}

// resumeFromParsed renders a plain text resume from a parsed profile.
func resumeFromParsed(parsed map[string]any) string {
	if len(parsed) == 0 {
		return ""
	}
	contact, _ := parsed["contact"].(map[string]any)
	var b strings.Builder
	for _, k := range []string{"name", "email", "phone"} {
		if v, _ := contact[k].(string); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(k[:1])+k[1:], v)
		}
	}
	if summary, _ := parsed["summary"].(string); summary != "" {
		fmt.Fprintf(&b, "\nSummary:\n%s\n", summary)
	}
	if skills := stringsOf(parsed["skills"]); len(skills) > 0 {
		fmt.Fprintf(&b, "\nSkills: %s\n", strings.Join(skills, ", "))
	}
	if exp := extraction.ExperienceSummary(parsed); exp != "" {
		fmt.Fprintf(&b, "\nExperience:\n%s\n", strings.ReplaceAll(exp, " | ", "\n"))
	}
	return strings.TrimSpace(b.String())
}

func stringsOf(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			if s, ok := it.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}
