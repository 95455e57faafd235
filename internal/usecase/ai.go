package usecase

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/extraction"
)

const minFeedbackNotesChars = 10

// AIService runs the interview tools: question generation and feedback analysis.
type AIService struct {
	Candidates domain.CandidateRepository
	Jobs       domain.JobRepository
	Interviews domain.InterviewRepository
	Pipeline   extraction.Extractor
}

// NewAIService constructs an AIService.
func NewAIService(c domain.CandidateRepository, j domain.JobRepository, iv domain.InterviewRepository, p extraction.Extractor) AIService {
	return AIService{Candidates: c, Jobs: j, Interviews: iv, Pipeline: p}
}

// QuestionsInput selects the job and tunes the generated question set.
type QuestionsInput struct {
	JobID      string
	Count      int
	Difficulty string
	Types      []string
}

// QuestionsResult is a generated question set with its subjects.
type QuestionsResult struct {
	JobID         string
	JobTitle      string
	CandidateID   string
	CandidateName string
	Result        domain.ExtractionResult
}

// Questions generates interview questions for a candidate and job. Without an explicit
// difficulty the experience level follows the parsed years of experience.
func (s AIService) Questions(ctx domain.Context, candidateID string, in QuestionsInput) (QuestionsResult, error) {
	if in.JobID == "" {
		return QuestionsResult{}, fmt.Errorf("%w: job_id is required", domain.ErrInvalidArgument)
	}
	var (
		c   domain.Candidate
		job domain.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { c, err = s.Candidates.Get(gctx, candidateID); return })
	g.Go(func() (err error) { job, err = s.Jobs.Get(gctx, in.JobID); return })
	if err := g.Wait(); err != nil {
		return QuestionsResult{}, fmt.Errorf("op=ai.Questions: %w", err)
	}

	opts := domain.QuestionOptions{
		Count:      in.Count,
		Difficulty: strings.ToLower(strings.TrimSpace(in.Difficulty)),
		Types:      in.Types,
	}
	if opts.Difficulty == "" {
		if years, ok := toFloat(c.ParsedResume["years_of_experience"]); ok {
			opts.ExperienceLevel = extraction.LevelForYears(years)
		}
	}
	text := c.ResumeText
	if strings.TrimSpace(text) == "" {
		text = "No resume text available"
	}
	res, err := s.Pipeline.Extract(ctx, domain.ExtractionRequest{
		Task:             domain.TaskQuestionGen,
		ResourceID:       c.ID,
		Text:             text,
		JobTitle:         job.Title,
		JobDescription:   job.Description,
		CandidateName:    c.Name,
		CandidateProfile: c.ParsedResume,
		Questions:        opts,
	})
	if err != nil {
		return QuestionsResult{}, fmt.Errorf("op=ai.Questions: %w", err)
	}
	return QuestionsResult{JobID: job.ID, JobTitle: job.Title, CandidateID: c.ID, CandidateName: c.Name, Result: res}, nil
}

// Templates returns the fixed question bank of an experience level.
func (s AIService) Templates(level string) (extraction.QuestionSet, error) {
	set, ok := extraction.QuestionTemplates(strings.ToLower(strings.TrimSpace(level)))
	if !ok {
		return extraction.QuestionSet{}, fmt.Errorf("%w: invalid experience level, must be one of: junior, mid, senior", domain.ErrInvalidArgument)
	}
	return set, nil
}

// FeedbackResult is a feedback analysis together with its subjects.
type FeedbackResult struct {
	InterviewID   string
	CandidateID   string
	CandidateName string
	JobTitle      string
	Result        domain.ExtractionResult
}

// AnalyzeFeedback stores the notes on the interview, then analyses them.
func (s AIService) AnalyzeFeedback(ctx domain.Context, interviewID, notes string) (FeedbackResult, error) {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) < minFeedbackNotesChars {
		return FeedbackResult{}, fmt.Errorf("%w: interview_notes must be at least %d characters", domain.ErrInvalidArgument, minFeedbackNotesChars)
	}
	iv, err := s.Interviews.Get(ctx, interviewID)
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("op=ai.AnalyzeFeedback: %w", err)
	}
	c, err := s.Candidates.Get(ctx, iv.CandidateID)
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("op=ai.AnalyzeFeedback: %w", err)
	}
	job, err := s.optionalJob(ctx, iv.JobID)
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("op=ai.AnalyzeFeedback: %w", err)
	}
	if err := s.Interviews.UpdateNotes(ctx, iv.ID, notes); err != nil {
		return FeedbackResult{}, fmt.Errorf("op=ai.AnalyzeFeedback: %w", err)
	}

	res, err := s.Pipeline.Extract(ctx, domain.ExtractionRequest{
		Task:           domain.TaskFeedbackAnalysis,
		ResourceID:     iv.ID,
		Text:           c.ResumeText,
		JobTitle:       job.Title,
		JobDescription: job.Description,
		CandidateName:  c.Name,
		InterviewNotes: []string{notes},
	})
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("op=ai.AnalyzeFeedback: %w", err)
	}
	return FeedbackResult{InterviewID: iv.ID, CandidateID: c.ID, CandidateName: c.Name, JobTitle: jobTitleOr(job), Result: res}, nil
}

// InterviewSummary analyses the notes of every interview round of a candidate at once.
// The job of the latest round with one provides the job context.
func (s AIService) InterviewSummary(ctx domain.Context, candidateID string) (FeedbackResult, error) {
	var (
		c   domain.Candidate
		ivs []domain.Interview
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { c, err = s.Candidates.Get(gctx, candidateID); return })
	g.Go(func() (err error) { ivs, err = s.Interviews.ListByCandidate(gctx, candidateID); return })
	if err := g.Wait(); err != nil {
		return FeedbackResult{}, fmt.Errorf("op=ai.InterviewSummary: %w", err)
	}

	var (
		notes []string
		jobID *string
	)
	for _, iv := range ivs {
		if n := strings.TrimSpace(iv.Notes); n != "" {
			notes = append(notes, n)
			if iv.JobID != nil {
				jobID = iv.JobID
			}
		}
	}
	if len(notes) == 0 {
		return FeedbackResult{}, fmt.Errorf("%w: candidate has no interview notes", domain.ErrInvalidArgument)
	}
	job, err := s.optionalJob(ctx, jobID)
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("op=ai.InterviewSummary: %w", err)
	}

	res, err := s.Pipeline.Extract(ctx, domain.ExtractionRequest{
		Task:           domain.TaskFeedbackAnalysis,
		ResourceID:     c.ID,
		Text:           c.ResumeText,
		JobTitle:       job.Title,
		JobDescription: job.Description,
		CandidateName:  c.Name,
		InterviewNotes: notes,
	})
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("op=ai.InterviewSummary: %w", err)
	}
	return FeedbackResult{CandidateID: c.ID, CandidateName: c.Name, JobTitle: jobTitleOr(job), Result: res}, nil
}

// optionalJob loads the job of an interview. A job deleted since scheduling yields the zero Job.
func (s AIService) optionalJob(ctx domain.Context, id *string) (domain.Job, error) {
	if id == nil || *id == "" {
		return domain.Job{}, nil
	}
	job, err := s.Jobs.Get(ctx, *id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Job{}, nil
	}
	return job, err
}

func jobTitleOr(j domain.Job) string {
	if j.Title == "" {
		return "Position"
	}
	return j.Title
}
