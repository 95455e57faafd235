package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrInternal          = errors.New("internal error")
)

// Context is an alias to context.Context to keep ports framework agnostic.
type Context = context.Context

// ParseStatus tracks the background resume parse of a candidate.
type ParseStatus string

const (
	ParsePending    ParseStatus = "pending"
	ParseProcessing ParseStatus = "processing"
	ParseCompleted  ParseStatus = "completed"
	ParseFailed     ParseStatus = "failed"
)

// Candidate is an applicant with an uploaded resume.
// ParsedResume holds the current resume_parse result; it is replaced wholesale on every completed run.
type Candidate struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	ResumeText   string
	ParsedResume map[string]any
	ParseTier    SourceTier
	// ParseProvider names the AI provider when ParseTier is TierAI.
	ParseProvider string
	ParseStatus   ParseStatus
	Score         *float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Job is an open position with a free text description.
type Job struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
}

// Interview is a scheduled conversation between a candidate and an interviewer.
type Interview struct {
	ID          string
	CandidateID string
	JobID       *string
	ScheduledAt time.Time
	Interviewer string
	Notes       string
	CreatedAt   time.Time
}

// InterviewUpdate carries the optional fields of a partial interview update.
type InterviewUpdate struct {
	JobID       *string
	ScheduledAt *time.Time
	Interviewer *string
	Notes       *string
}

// ListParams pages list queries.
type ListParams struct {
	Offset int
	Limit  int
}

// Repositories (ports)
// Test doubles for these live in internal/domain/mocks (testify/mock).

type CandidateRepository interface {
	Create(ctx Context, c Candidate) (string, error)
	Get(ctx Context, id string) (Candidate, error)
	List(ctx Context, p ListParams) ([]Candidate, error)
	UpdateScore(ctx Context, id string, score float64) error
	MarkParseStatus(ctx Context, id string, status ParseStatus) error
	ListStaleParses(ctx Context, olderThan time.Time, limit int) ([]string, error)
}

type JobRepository interface {
	Create(ctx Context, j Job) (string, error)
	Get(ctx Context, id string) (Job, error)
	List(ctx Context, p ListParams) ([]Job, error)
}

type InterviewRepository interface {
	Create(ctx Context, iv Interview) (string, error)
	Get(ctx Context, id string) (Interview, error)
	List(ctx Context, p ListParams) ([]Interview, error)
	ListByCandidate(ctx Context, candidateID string) ([]Interview, error)
	ListByJob(ctx Context, jobID string) ([]Interview, error)
	Update(ctx Context, id string, u InterviewUpdate) (Interview, error)
	UpdateNotes(ctx Context, id, notes string) error
	Delete(ctx Context, id string) error
}

// Resource is the view of a record that the extraction pipeline reads.
type Resource struct {
	ID      string
	Text    string
	Current *ExtractionResult
}

// ResultStore holds the current-result slot of a resource.
// SetCurrentResult must replace the stored value in a single atomic write.
type ResultStore interface {
	GetResource(ctx Context, id string) (Resource, error)
	SetCurrentResult(ctx Context, id string, result ExtractionResult) error
	Exists(ctx Context, id string) (bool, error)
}

// ParseQueue schedules background resume parses.
type ParseQueue interface {
	EnqueueParse(ctx Context, candidateID string) error
}

// TextExtractor extracts plain text from an uploaded document on disk.
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// Generator is a client of an external text-generation service.
type Generator interface {
	Name() string
	Generate(ctx Context, req GenerateRequest) (string, error)
}

type outputCheckKey struct{}

// ContextWithOutputCheck attaches the caller's acceptance test for raw generator
// output. Wrappers that remember responses keep only output that passes it.
func ContextWithOutputCheck(ctx Context, check func(raw string) error) Context {
	if check == nil {
		return ctx
	}
	return context.WithValue(ctx, outputCheckKey{}, check)
}

// OutputCheckFromContext returns the acceptance test attached to ctx, if any.
func OutputCheckFromContext(ctx Context) (func(raw string) error, bool) {
	check, ok := ctx.Value(outputCheckKey{}).(func(raw string) error)
	return check, ok
}

// GenerateRequest is a single bounded call to a generation service.
type GenerateRequest struct {
	Task        TaskKind
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	// SchemaName and Schema describe the expected JSON output for providers that support structured output.
	SchemaName string
	Schema     map[string]any
}
