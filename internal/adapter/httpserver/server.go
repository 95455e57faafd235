package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/usecase"
)

// Check is one named readiness probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Candidates usecase.CandidateService
	Jobs       usecase.JobService
	Interviews usecase.InterviewService
	AI         usecase.AIService
	Checks     []Check
}

// NewServer constructs a Server with all handlers and checks wired.
func NewServer(cfg config.Config, candidates usecase.CandidateService, jobs usecase.JobService, interviews usecase.InterviewService, ai usecase.AIService, checks ...Check) *Server {
	return &Server{Cfg: cfg, Candidates: candidates, Jobs: jobs, Interviews: interviews, AI: ai, Checks: checks}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler runs every readiness probe concurrently and answers 503 when one fails.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type result struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		results := make([]result, len(s.Checks))
		var wg sync.WaitGroup
		for i, c := range s.Checks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = result{Name: c.Name, OK: true}
				if err := c.Probe(ctx); err != nil {
					results[i] = result{Name: c.Name, Details: err.Error()}
				}
			}()
		}
		wg.Wait()

		status := http.StatusOK
		for _, res := range results {
			if !res.OK {
				status = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, status, map[string]any{"checks": results})
	}
}
