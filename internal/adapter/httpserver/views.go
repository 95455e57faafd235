package httpserver

import (
	"time"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/usecase"
)

type candidateView struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email,omitempty"`
	Phone        string             `json:"phone,omitempty"`
	ResumeText   string             `json:"resume_text,omitempty"`
	ParsedResume map[string]any     `json:"parsed_resume"`
	ParseStatus  domain.ParseStatus `json:"parse_status"`
	Score        *float64           `json:"score"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func newCandidateView(c domain.Candidate, withText bool) candidateView {
	v := candidateView{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		ParsedResume: c.ParsedResume,
		ParseStatus:  c.ParseStatus,
		Score:        c.Score,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if withText {
		v.ResumeText = c.ResumeText
	}
	return v
}

type jobView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func newJobView(j domain.Job) jobView {
	return jobView{ID: j.ID, Title: j.Title, Description: j.Description, CreatedAt: j.CreatedAt}
}

type interviewView struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidate_id"`
	JobID       *string   `json:"job_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Interviewer string    `json:"interviewer,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newInterviewView(iv domain.Interview) interviewView {
	return interviewView{
		ID:          iv.ID,
		CandidateID: iv.CandidateID,
		JobID:       iv.JobID,
		ScheduledAt: iv.ScheduledAt,
		Interviewer: iv.Interviewer,
		Notes:       iv.Notes,
		CreatedAt:   iv.CreatedAt,
	}
}

func mapSlice[T, V any](in []T, f func(T) V) []V {
	out := make([]V, 0, len(in))
	for _, x := range in {
		out = append(out, f(x))
	}
	return out
}

type rankView struct {
	CandidateID string         `json:"candidate_id"`
	JobID       string         `json:"job_id"`
	Score       float64        `json:"score"`
	Details     map[string]any `json:"details"`
}

func newRankView(r usecase.RankResult) rankView {
	return rankView{CandidateID: r.CandidateID, JobID: r.JobID, Score: r.Score, Details: r.Details}
}

// withFields merges fixed subject keys into a normalized result body.
// Result fields win on collision so the body stays schema conformant.
func withFields(subject map[string]any, fields map[string]any) map[string]any {
	out := make(map[string]any, len(subject)+len(fields))
	for k, v := range subject {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}
