package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// JobRepo persists job postings.
type JobRepo struct{ Pool PgxPool }

// NewJobRepo constructs a JobRepo with the given pool.
func NewJobRepo(p PgxPool) *JobRepo { return &JobRepo{Pool: p} }

var _ domain.JobRepository = (*JobRepo)(nil)

// Create inserts a new job and returns its id.
func (r *JobRepo) Create(ctx domain.Context, j domain.Job) (string, error) {
	ctx, span := startSpan(ctx, "jobs", "Create")
	defer span.End()
	id := j.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO jobs (id, title, description, created_at) VALUES ($1,$2,$3,$4)`
	if _, err := r.Pool.Exec(ctx, q, id, j.Title, j.Description, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=job.create: %w", err)
	}
	return id, nil
}

// Get loads a job by id.
func (r *JobRepo) Get(ctx domain.Context, id string) (domain.Job, error) {
	ctx, span := startSpan(ctx, "jobs", "Get")
	defer span.End()
	var j domain.Job
	err := r.Pool.QueryRow(ctx, `SELECT id, title, description, created_at FROM jobs WHERE id=$1`, id).
		Scan(&j.ID, &j.Title, &j.Description, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, fmt.Errorf("op=job.get: %w", domain.ErrNotFound)
		}
		return domain.Job{}, fmt.Errorf("op=job.get: %w", err)
	}
	return j, nil
}

// List returns jobs newest first.
func (r *JobRepo) List(ctx domain.Context, p domain.ListParams) ([]domain.Job, error) {
	ctx, span := startSpan(ctx, "jobs", "List")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT id, title, description, created_at FROM jobs ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limitOf(p.Limit), max(p.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("op=job.list: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Job, 0)
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=job.list: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=job.list: %w", err)
	}
	return out, nil
}
