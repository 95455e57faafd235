package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/candidates/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/candidates/{id}", http.MethodGet, http.StatusText(http.StatusNoContent)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/candidates/abc", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/candidates/{id}", http.MethodGet, http.StatusText(http.StatusNoContent)))
	assert.Equal(t, before+1, after)
}

func TestHTTPMetricsMiddleware_OutsideRouter(t *testing.T) {
	rec := httptest.NewRecorder()
	mw := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) }))
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestExtractionAndJobHelpers(t *testing.T) {
	before := testutil.ToFloat64(ExtractionResultsTotal.WithLabelValues("ranking", "heuristic"))
	ObserveExtraction("ranking", "heuristic")
	assert.Equal(t, before+1, testutil.ToFloat64(ExtractionResultsTotal.WithLabelValues("ranking", "heuristic")))

	ObserveAIRequest("openai", "ranking", "ok", 120*time.Millisecond)
	ObserveRankingScore(72)
	ObserveRankingScore(150)

	EnqueueJob("resume_parse")
	CoalesceJob("resume_parse")
	StartProcessingJob("resume_parse")
	CompleteJob("resume_parse")
	StartProcessingJob("resume_parse")
	FailJob("resume_parse")
	assert.Equal(t, 0.0, testutil.ToFloat64(JobsProcessing.WithLabelValues("resume_parse")))
}
