package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/usecase"
)

type questionsRequest struct {
	JobID         string   `json:"job_id" validate:"required"`
	Count         int      `json:"count" validate:"omitempty,min=1,max=20"`
	Difficulty    string   `json:"difficulty" validate:"omitempty,max=20"`
	QuestionTypes []string `json:"question_types" validate:"omitempty,max=4,dive,max=20"`
}

type feedbackRequest struct {
	InterviewNotes string `json:"interview_notes" validate:"required,min=10,max=20000"`
}

// QuestionsHandler generates interview questions for a candidate and job.
func (s *Server) QuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		res, err := s.AI.Questions(r.Context(), chi.URLParam(r, "id"), usecase.QuestionsInput{
			JobID:      req.JobID,
			Count:      req.Count,
			Difficulty: req.Difficulty,
			Types:      req.QuestionTypes,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		body := withFields(map[string]any{
			"candidate_id":   res.CandidateID,
			"candidate_name": res.CandidateName,
			"job_id":         res.JobID,
			"job_title":      res.JobTitle,
		}, res.Result.Fields)
		writeResult(w, http.StatusOK, res.Result.Tier, body)
	}
}

// TemplatesHandler returns the fixed question bank for an experience level.
func (s *Server) TemplatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level := strings.ToLower(chi.URLParam(r, "level"))
		set, err := s.AI.Templates(level)
		if err != nil {
			writeError(w, r, err, map[string]any{"level": level})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"experience_level": level, "questions": set.Questions})
	}
}

// AnalyzeFeedbackHandler stores the notes on the interview and analyses them.
func (s *Server) AnalyzeFeedbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		res, err := s.AI.AnalyzeFeedback(r.Context(), chi.URLParam(r, "id"), req.InterviewNotes)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeResult(w, http.StatusOK, res.Result.Tier, feedbackBody(res))
	}
}

// InterviewSummaryHandler combines every noted interview round of a candidate.
func (s *Server) InterviewSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.AI.InterviewSummary(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeResult(w, http.StatusOK, res.Result.Tier, feedbackBody(res))
	}
}

func feedbackBody(res usecase.FeedbackResult) map[string]any {
	subject := map[string]any{
		"candidate_id":   res.CandidateID,
		"candidate_name": res.CandidateName,
		"job_title":      res.JobTitle,
	}
	if res.InterviewID != "" {
		subject["interview_id"] = res.InterviewID
	}
	return withFields(subject, res.Result.Fields)
}
