package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createJobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=50000"`
}

// CreateJobHandler stores a job; pasted HTML descriptions are reduced to text.
func (s *Server) CreateJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createJobRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		j, err := s.Jobs.Create(r.Context(), req.Title, req.Description)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, newJobView(j))
	}
}

// ListJobsHandler pages jobs.
func (s *Server) ListJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := listParams(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		js, err := s.Jobs.List(r.Context(), p)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(js, newJobView))
	}
}

// GetJobHandler returns one job.
func (s *Server) GetJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, err := s.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, newJobView(j))
	}
}

// JobInterviewsHandler lists the interviews scheduled for a job.
func (s *Server) JobInterviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ivs, err := s.Interviews.ListByJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(ivs, newInterviewView))
	}
}
