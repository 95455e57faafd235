package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

type createInterviewRequest struct {
	CandidateID string    `json:"candidate_id" validate:"required"`
	JobID       *string   `json:"job_id"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Interviewer string    `json:"interviewer" validate:"max=200"`
	Notes       string    `json:"notes" validate:"max=20000"`
}

type updateInterviewRequest struct {
	JobID       *string    `json:"job_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Interviewer *string    `json:"interviewer" validate:"omitempty,max=200"`
	Notes       *string    `json:"notes" validate:"omitempty,max=20000"`
}

type notesRequest struct {
	Notes string `json:"notes" validate:"max=20000"`
}

// CreateInterviewHandler schedules an interview.
func (s *Server) CreateInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createInterviewRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		iv, err := s.Interviews.Create(r.Context(), domain.Interview{
			CandidateID: req.CandidateID,
			JobID:       req.JobID,
			ScheduledAt: req.ScheduledAt,
			Interviewer: req.Interviewer,
			Notes:       req.Notes,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, newInterviewView(iv))
	}
}

// ListInterviewsHandler pages interviews.
func (s *Server) ListInterviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := listParams(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		ivs, err := s.Interviews.List(r.Context(), p)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(ivs, newInterviewView))
	}
}

// GetInterviewHandler returns one interview.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iv, err := s.Interviews.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, newInterviewView(iv))
	}
}

// UpdateInterviewHandler applies a partial update; absent fields are kept.
func (s *Server) UpdateInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateInterviewRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		iv, err := s.Interviews.Update(r.Context(), chi.URLParam(r, "id"), domain.InterviewUpdate{
			JobID:       req.JobID,
			ScheduledAt: req.ScheduledAt,
			Interviewer: req.Interviewer,
			Notes:       req.Notes,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, newInterviewView(iv))
	}
}

// UpdateNotesHandler replaces the notes of an interview.
func (s *Server) UpdateNotesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notesRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		iv, err := s.Interviews.UpdateNotes(r.Context(), chi.URLParam(r, "id"), req.Notes)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, newInterviewView(iv))
	}
}

// DeleteInterviewHandler removes an interview.
func (s *Server) DeleteInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Interviews.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CandidateInterviewsHandler lists the interviews of a candidate.
func (s *Server) CandidateInterviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ivs, err := s.Interviews.ListByCandidate(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(ivs, newInterviewView))
	}
}
