package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// InterviewRepo persists interviews and their notes.
type InterviewRepo struct{ Pool PgxPool }

// NewInterviewRepo constructs an InterviewRepo with the given pool.
func NewInterviewRepo(p PgxPool) *InterviewRepo { return &InterviewRepo{Pool: p} }

var _ domain.InterviewRepository = (*InterviewRepo)(nil)

const interviewColumns = `id, candidate_id, job_id, scheduled_at, interviewer, notes, created_at`

// Create inserts an interview and returns its id.
func (r *InterviewRepo) Create(ctx domain.Context, iv domain.Interview) (string, error) {
	ctx, span := startSpan(ctx, "interviews", "Create")
	defer span.End()
	id := iv.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO interviews (id, candidate_id, job_id, scheduled_at, interviewer, notes, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := r.Pool.Exec(ctx, q, id, iv.CandidateID, iv.JobID, iv.ScheduledAt.UTC(), iv.Interviewer, iv.Notes, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=interview.create: %w", err)
	}
	return id, nil
}

// Get loads an interview by id.
func (r *InterviewRepo) Get(ctx domain.Context, id string) (domain.Interview, error) {
	ctx, span := startSpan(ctx, "interviews", "Get")
	defer span.End()
	iv, err := scanInterview(r.Pool.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id=$1`, id))
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.get: %w", err)
	}
	return iv, nil
}

// List returns interviews by schedule.
func (r *InterviewRepo) List(ctx domain.Context, p domain.ListParams) ([]domain.Interview, error) {
	ctx, span := startSpan(ctx, "interviews", "List")
	defer span.End()
	return r.query(ctx, "op=interview.list", `SELECT `+interviewColumns+` FROM interviews ORDER BY scheduled_at, id LIMIT $1 OFFSET $2`, limitOf(p.Limit), max(p.Offset, 0))
}

// ListByCandidate returns every interview of a candidate in schedule order.
func (r *InterviewRepo) ListByCandidate(ctx domain.Context, candidateID string) ([]domain.Interview, error) {
	ctx, span := startSpan(ctx, "interviews", "ListByCandidate")
	defer span.End()
	return r.query(ctx, "op=interview.list_by_candidate", `SELECT `+interviewColumns+` FROM interviews WHERE candidate_id=$1 ORDER BY scheduled_at, id`, candidateID)
}

// ListByJob returns every interview for a job in schedule order.
func (r *InterviewRepo) ListByJob(ctx domain.Context, jobID string) ([]domain.Interview, error) {
	ctx, span := startSpan(ctx, "interviews", "ListByJob")
	defer span.End()
	return r.query(ctx, "op=interview.list_by_job", `SELECT `+interviewColumns+` FROM interviews WHERE job_id=$1 ORDER BY scheduled_at, id`, jobID)
}

// Update applies the non-nil fields of u and returns the stored interview.
func (r *InterviewRepo) Update(ctx domain.Context, id string, u domain.InterviewUpdate) (domain.Interview, error) {
	ctx, span := startSpan(ctx, "interviews", "Update")
	defer span.End()
	var scheduled *time.Time
	if u.ScheduledAt != nil {
		t := u.ScheduledAt.UTC()
		scheduled = &t
	}
	q := `UPDATE interviews SET
		job_id = COALESCE($2, job_id),
		scheduled_at = COALESCE($3, scheduled_at),
		interviewer = COALESCE($4, interviewer),
		notes = COALESCE($5, notes)
	WHERE id=$1 RETURNING ` + interviewColumns
	iv, err := scanInterview(r.Pool.QueryRow(ctx, q, id, u.JobID, scheduled, u.Interviewer, u.Notes))
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.update: %w", err)
	}
	return iv, nil
}

// UpdateNotes replaces the notes of an interview.
func (r *InterviewRepo) UpdateNotes(ctx domain.Context, id, notes string) error {
	ctx, span := startSpan(ctx, "interviews", "UpdateNotes")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `UPDATE interviews SET notes=$2 WHERE id=$1`, id, notes)
	if err != nil {
		return fmt.Errorf("op=interview.update_notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=interview.update_notes: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes an interview.
func (r *InterviewRepo) Delete(ctx domain.Context, id string) error {
	ctx, span := startSpan(ctx, "interviews", "Delete")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM interviews WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=interview.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=interview.delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *InterviewRepo) query(ctx domain.Context, op, q string, args ...any) ([]domain.Interview, error) {
	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	out := make([]domain.Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanInterview(row pgx.Row) (domain.Interview, error) {
	var iv domain.Interview
	if err := row.Scan(&iv.ID, &iv.CandidateID, &iv.JobID, &iv.ScheduledAt, &iv.Interviewer, &iv.Notes, &iv.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Interview{}, domain.ErrNotFound
		}
		return domain.Interview{}, err
	}
	return iv, nil
}
