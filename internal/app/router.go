// Package app wires adapters, use cases and the HTTP router into a runnable service.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
)

// ParseOrigins splits a comma-separated origin list, trimming spaces.
// An empty list allows any origin.
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
// Mutating routes share one per-IP rate limit. Admin routes exist only when
// admin credentials are configured.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)
	if cfg.HTTPWriteTimeout > 0 {
		r.Use(middleware.Timeout(cfg.HTTPWriteTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{httpserver.RequestIDHeader, httpserver.TierHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/candidates", srv.ListCandidatesHandler())
	r.Get("/candidates/{id}", srv.GetCandidateHandler())
	r.Get("/candidates/{id}/interviews", srv.CandidateInterviewsHandler())
	r.Get("/jobs", srv.ListJobsHandler())
	r.Get("/jobs/{id}", srv.GetJobHandler())
	r.Get("/jobs/{id}/interviews", srv.JobInterviewsHandler())
	r.Get("/interviews", srv.ListInterviewsHandler())
	r.Get("/interviews/{id}", srv.GetInterviewHandler())
	r.Get("/ai/question-templates/{level}", srv.TemplatesHandler())

	r.Group(func(wr chi.Router) {
		if cfg.RateLimitPerMin > 0 {
			wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
		}
		wr.Post("/candidates/upload", srv.UploadHandler())
		wr.Post("/candidates/{id}/optimize-resume", srv.OptimizeResumeHandler())
		wr.Post("/candidates/{id}/keyword-suggestions", srv.KeywordSuggestionsHandler())
		wr.Post("/jobs", srv.CreateJobHandler())
		wr.Post("/jobs/{job_id}/rank/{candidate_id}", srv.RankHandler())
		wr.Post("/interviews", srv.CreateInterviewHandler())
		wr.Put("/interviews/{id}", srv.UpdateInterviewHandler())
		wr.Put("/interviews/{id}/notes", srv.UpdateNotesHandler())
		wr.Delete("/interviews/{id}", srv.DeleteInterviewHandler())
		wr.Post("/ai/candidates/{id}/questions", srv.QuestionsHandler())
		wr.Post("/ai/interviews/{id}/analyze-feedback", srv.AnalyzeFeedbackHandler())
		wr.Post("/ai/candidates/{id}/interview-summary", srv.InterviewSummaryHandler())

		if cfg.AdminEnabled() {
			wr.Route("/admin", func(ar chi.Router) {
				ar.Use(httpserver.AdminGuard(cfg.AdminUsername, cfg.AdminPasswordHash))
				ar.Post("/candidates/{id}/reparse", srv.ReparseHandler())
			})
		}
	})

	return httpserver.SecurityHeaders(r)
}
