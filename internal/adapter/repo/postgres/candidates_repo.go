package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// CandidateRepo persists candidates. It is also the ResultStore of the background
// resume parse: the current result lives in parsed_json.
type CandidateRepo struct{ Pool PgxPool }

// NewCandidateRepo constructs a CandidateRepo with the given pool.
func NewCandidateRepo(p PgxPool) *CandidateRepo { return &CandidateRepo{Pool: p} }

var (
	_ domain.CandidateRepository = (*CandidateRepo)(nil)
	_ domain.ResultStore         = (*CandidateRepo)(nil)
)

const candidateColumns = `id, name, email, phone, resume_text, parsed_json, COALESCE(parse_tier,''), COALESCE(parse_provider,''), parse_status, score, created_at, updated_at`

func startSpan(ctx context.Context, table, op string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("repo."+table).Start(ctx, table+"."+op)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", table),
	)
	return ctx, span
}

// Create inserts a candidate with a pending parse and returns its id.
func (r *CandidateRepo) Create(ctx domain.Context, c domain.Candidate) (string, error) {
	ctx, span := startSpan(ctx, "candidates", "Create")
	defer span.End()
	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}
	status := c.ParseStatus
	if status == "" {
		status = domain.ParsePending
	}
	now := time.Now().UTC()
	q := `INSERT INTO candidates (id, name, email, phone, resume_text, parse_status, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	if _, err := r.Pool.Exec(ctx, q, id, c.Name, c.Email, c.Phone, c.ResumeText, status, now, now); err != nil {
		return "", fmt.Errorf("op=candidate.create: %w", err)
	}
	return id, nil
}

// Get loads a candidate by id.
func (r *CandidateRepo) Get(ctx domain.Context, id string) (domain.Candidate, error) {
	ctx, span := startSpan(ctx, "candidates", "Get")
	defer span.End()
	c, err := scanCandidate(r.Pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id=$1`, id))
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("op=candidate.get: %w", err)
	}
	return c, nil
}

// List returns candidates newest first.
func (r *CandidateRepo) List(ctx domain.Context, p domain.ListParams) ([]domain.Candidate, error) {
	ctx, span := startSpan(ctx, "candidates", "List")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limitOf(p.Limit), max(p.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("op=candidate.list: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("op=candidate.list: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=candidate.list: %w", err)
	}
	return out, nil
}

// UpdateScore records the latest ranking score.
func (r *CandidateRepo) UpdateScore(ctx domain.Context, id string, score float64) error {
	ctx, span := startSpan(ctx, "candidates", "UpdateScore")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `UPDATE candidates SET score=$2, updated_at=$3 WHERE id=$1`, id, score, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.update_score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.update_score: %w", domain.ErrNotFound)
	}
	return nil
}

// MarkParseStatus moves the background parse state machine.
func (r *CandidateRepo) MarkParseStatus(ctx domain.Context, id string, status domain.ParseStatus) error {
	ctx, span := startSpan(ctx, "candidates", "MarkParseStatus")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `UPDATE candidates SET parse_status=$2, updated_at=$3 WHERE id=$1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.mark_parse_status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.mark_parse_status: %w", domain.ErrNotFound)
	}
	return nil
}

// ListStaleParses returns ids whose parse has been processing since before olderThan.
func (r *CandidateRepo) ListStaleParses(ctx domain.Context, olderThan time.Time, limit int) ([]string, error) {
	ctx, span := startSpan(ctx, "candidates", "ListStaleParses")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT id FROM candidates WHERE parse_status=$1 AND updated_at < $2 ORDER BY updated_at LIMIT $3`,
		domain.ParseProcessing, olderThan.UTC(), limitOf(limit))
	if err != nil {
		return nil, fmt.Errorf("op=candidate.list_stale: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("op=candidate.list_stale: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetResource implements domain.ResultStore.
func (r *CandidateRepo) GetResource(ctx domain.Context, id string) (domain.Resource, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return domain.Resource{}, err
	}
	res := domain.Resource{ID: c.ID, Text: c.ResumeText}
	if c.ParsedResume != nil {
		res.Current = &domain.ExtractionResult{
			Task:     domain.TaskResumeParse,
			Fields:   c.ParsedResume,
			Tier:     c.ParseTier,
			Provider: c.ParseProvider,
		}
	}
	return res, nil
}

// SetCurrentResult implements domain.ResultStore. The result, its tier and the
// completed status are replaced by one UPDATE, so readers never see a mix of runs.
func (r *CandidateRepo) SetCurrentResult(ctx domain.Context, id string, result domain.ExtractionResult) error {
	ctx, span := startSpan(ctx, "candidates", "SetCurrentResult")
	defer span.End()
	span.SetAttributes(attribute.String("extraction.tier", string(result.Tier)))
	b, err := json.Marshal(result.Fields)
	if err != nil {
		return fmt.Errorf("op=candidate.set_result: %w", err)
	}
	q := `UPDATE candidates SET parsed_json=$2, parse_tier=$3, parse_provider=$4, parse_status=$5, updated_at=$6 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, b, string(result.Tier), result.Provider, domain.ParseCompleted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.set_result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.set_result: %w", domain.ErrNotFound)
	}
	return nil
}

// Exists implements domain.ResultStore.
func (r *CandidateRepo) Exists(ctx domain.Context, id string) (bool, error) {
	ctx, span := startSpan(ctx, "candidates", "Exists")
	defer span.End()
	var ok bool
	if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM candidates WHERE id=$1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("op=candidate.exists: %w", err)
	}
	return ok, nil
}

func scanCandidate(row pgx.Row) (domain.Candidate, error) {
	var (
		c      domain.Candidate
		parsed []byte
		tier   string
		status string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ResumeText, &parsed, &tier, &c.ParseProvider, &status, &c.Score, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Candidate{}, domain.ErrNotFound
		}
		return domain.Candidate{}, err
	}
	c.ParseTier = domain.SourceTier(tier)
	c.ParseStatus = domain.ParseStatus(status)
	if len(parsed) > 0 {
		if err := json.Unmarshal(parsed, &c.ParsedResume); err != nil {
			return domain.Candidate{}, fmt.Errorf("decode parsed_json: %w", err)
		}
	}
	return c, nil
}
