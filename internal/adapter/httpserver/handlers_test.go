package httpserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/textextractor"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain/mocks"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/extraction"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/usecase"
)

type recordingSubmitter struct {
	mu  sync.Mutex
	ids []string
}

func (s *recordingSubmitter) Submit(_ domain.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return nil
}

type harness struct {
	cands  *mocks.CandidateRepository
	jobs   *mocks.JobRepository
	ivs    *mocks.InterviewRepository
	parses *recordingSubmitter
	router chi.Router
}

// newHarness mounts the handlers on their API routes over mocked repositories
// and a pipeline without AI tiers, so every extraction is heuristic.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		cands:  mocks.NewCandidateRepository(t),
		jobs:   mocks.NewJobRepository(t),
		ivs:    mocks.NewInterviewRepository(t),
		parses: &recordingSubmitter{},
	}
	pipeline := extraction.NewPipeline(extraction.Options{})
	srv := httpserver.NewServer(config.Config{MaxUploadMB: 1},
		usecase.NewCandidateService(h.cands, h.jobs, textextractor.NewLocal(), pipeline, nil, h.parses),
		usecase.NewJobService(h.jobs),
		usecase.NewInterviewService(h.ivs, h.cands, h.jobs),
		usecase.NewAIService(h.cands, h.jobs, h.ivs, pipeline),
	)
	r := chi.NewRouter()
	r.Post("/candidates/upload", srv.UploadHandler())
	r.Get("/candidates", srv.ListCandidatesHandler())
	r.Get("/candidates/{id}", srv.GetCandidateHandler())
	r.Get("/candidates/{id}/interviews", srv.CandidateInterviewsHandler())
	r.Post("/candidates/{id}/keyword-suggestions", srv.KeywordSuggestionsHandler())
	r.Post("/jobs", srv.CreateJobHandler())
	r.Get("/jobs/{id}", srv.GetJobHandler())
	r.Post("/jobs/{job_id}/rank/{candidate_id}", srv.RankHandler())
	r.Post("/interviews", srv.CreateInterviewHandler())
	r.Put("/interviews/{id}", srv.UpdateInterviewHandler())
	r.Delete("/interviews/{id}", srv.DeleteInterviewHandler())
	r.Post("/ai/candidates/{id}/questions", srv.QuestionsHandler())
	r.Get("/ai/question-templates/{level}", srv.TemplatesHandler())
	r.Post("/ai/interviews/{id}/analyze-feedback", srv.AnalyzeFeedbackHandler())
	r.Post("/ai/candidates/{id}/interview-summary", srv.InterviewSummaryHandler())
	r.Post("/admin/candidates/{id}/reparse", srv.ReparseHandler())
	h.router = r
	return h
}

func (h *harness) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env, ok := decodeBody(t, rec)["error"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return env["code"].(string)
}

func buildUpload(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUploadHandler_StoresCandidateAndSubmitsParse(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.cands.On("Create", mock.Anything, mock.MatchedBy(func(c domain.Candidate) bool {
		return c.Name == "Jane Doe" && c.Email == "jane@example.com" &&
			strings.Contains(c.ResumeText, "Go engineer") && c.ParseStatus == domain.ParsePending
	})).Return("c1", nil).Once()
	h.cands.On("Get", mock.Anything, "c1").Return(domain.Candidate{ID: "c1", Name: "Jane Doe", ResumeText: "Go engineer", ParseStatus: domain.ParsePending}, nil).Once()

	body, ctype := buildUpload(t, map[string]string{"name": "Jane Doe", "email": "jane@example.com"}, "cv.txt", []byte("Jane Doe\nGo engineer with 6 years of experience\n"))
	req := httptest.NewRequest(http.MethodPost, "/candidates/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decodeBody(t, rec)
	assert.Equal(t, "c1", out["id"])
	assert.Equal(t, "pending", out["parse_status"])
	assert.NotContains(t, out, "resume_text")
	assert.Equal(t, []string{"c1"}, h.parses.ids)
}

func TestUploadHandler_Rejections(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		fields   map[string]string
		fileName string
		content  []byte
		status   int
	}{
		{"missing name", map[string]string{}, "cv.txt", []byte("resume"), http.StatusBadRequest},
		{"bad email", map[string]string{"name": "A", "email": "nope"}, "cv.txt", []byte("resume"), http.StatusBadRequest},
		{"missing file", map[string]string{"name": "A"}, "", nil, http.StatusBadRequest},
		{"unsupported extension", map[string]string{"name": "A"}, "cv.exe", []byte("MZ"), http.StatusUnsupportedMediaType},
		{"binary posing as text", map[string]string{"name": "A"}, "cv.txt", []byte{0x00, 0x01, 0x02, 0x03}, http.StatusUnsupportedMediaType},
		{"text posing as pdf", map[string]string{"name": "A"}, "cv.pdf", []byte("just text"), http.StatusUnsupportedMediaType},
		{"too large", map[string]string{"name": "A"}, "cv.txt", bytes.Repeat([]byte("a"), 3<<20), http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			body, ctype := buildUpload(t, tc.fields, tc.fileName, tc.content)
			req := httptest.NewRequest(http.MethodPost, "/candidates/upload", body)
			req.Header.Set("Content-Type", ctype)
			rec := httptest.NewRecorder()
			h.router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Empty(t, h.parses.ids)
		})
	}
}

func TestUploadHandler_RequiresMultipart(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/candidates/upload", `{"name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(t, rec))
}

func TestGetCandidateHandler(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.cands.On("Get", mock.Anything, "c1").Return(domain.Candidate{ID: "c1", Name: "A", ResumeText: "text"}, nil)
	h.cands.On("Get", mock.Anything, "missing").Return(domain.Candidate{}, domain.ErrNotFound)

	rec := h.do(t, http.MethodGet, "/candidates/c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text", decodeBody(t, rec)["resume_text"])

	rec = h.do(t, http.MethodGet, "/candidates/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestListCandidatesHandler_Paging(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.cands.On("List", mock.Anything, domain.ListParams{Offset: 10, Limit: 5}).Return([]domain.Candidate{{ID: "c1"}}, nil).Once()

	rec := h.do(t, http.MethodGet, "/candidates?offset=10&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 1)

	for _, q := range []string{"?limit=0", "?limit=500", "?offset=-1", "?offset=x"} {
		assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/candidates"+q, "").Code, q)
	}
}

func TestCreateJobHandler(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.jobs.On("Create", mock.Anything, mock.MatchedBy(func(j domain.Job) bool {
		return j.Title == "Backend Engineer" && !strings.Contains(j.Description, "<p>")
	})).Return("j1", nil).Once()

	rec := h.do(t, http.MethodPost, "/jobs", `{"title":"Backend Engineer","description":"<p>Build <b>Go</b> services</p>"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "j1", decodeBody(t, rec)["id"])
}

func TestCreateJobHandler_Validation(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"empty body":    "",
		"unknown field": `{"title":"T","description":"D","salary":1}`,
		"missing title": `{"description":"D"}`,
		"not json":      `title=T`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRankHandler_PersistsScoreAndReportsTier(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.jobs.On("Get", mock.Anything, "j1").Return(domain.Job{ID: "j1", Title: "Backend", Description: "Go PostgreSQL Kubernetes"}, nil)
	h.cands.On("Get", mock.Anything, "c1").Return(domain.Candidate{
		ID:           "c1",
		ResumeText:   "Go developer",
		ParsedResume: map[string]any{"skills": []any{"Go", "PostgreSQL"}},
	}, nil)
	h.cands.On("UpdateScore", mock.Anything, "c1", mock.AnythingOfType("float64")).Return(nil).Once()

	rec := h.do(t, http.MethodPost, "/jobs/j1/rank/c1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "heuristic", rec.Header().Get(httpserver.TierHeader))
	out := decodeBody(t, rec)
	assert.Equal(t, "c1", out["candidate_id"])
	assert.Equal(t, "j1", out["job_id"])
	score, ok := out["score"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
	assert.Contains(t, out, "details")
}

func TestRankHandler_UnknownJob(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.jobs.On("Get", mock.Anything, "nope").Return(domain.Job{}, domain.ErrNotFound)

	rec := h.do(t, http.MethodPost, "/jobs/nope/rank/c1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get(httpserver.TierHeader))
}

func TestKeywordSuggestionsHandler(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.cands.On("Get", mock.Anything, "c1").Return(domain.Candidate{ID: "c1", ResumeText: "Go developer building APIs"}, nil)

	rec := h.do(t, http.MethodPost, "/candidates/c1/keyword-suggestions", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody(t, rec)
	assert.Equal(t, "c1", out["candidate_id"])
	assert.Contains(t, out, "recommended_keywords")
	assert.Contains(t, out, "missing_keywords")
	assert.NotContains(t, out, "ats_score")
}

func TestCreateInterviewHandler(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.cands.On("Get", mock.Anything, "c1").Return(domain.Candidate{ID: "c1"}, nil)
	h.cands.On("Get", mock.Anything, "ghost").Return(domain.Candidate{}, domain.ErrNotFound)
	h.ivs.On("Create", mock.Anything, mock.MatchedBy(func(iv domain.Interview) bool {
		return iv.CandidateID == "c1" && iv.JobID == nil && iv.Interviewer == "Sam"
	})).Return("iv1", nil).Once()

	rec := h.do(t, http.MethodPost, "/interviews", `{"candidate_id":"c1","job_id":"","scheduled_at":"2026-11-02T10:00:00Z","interviewer":" Sam "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decodeBody(t, rec)
	assert.Equal(t, "iv1", out["id"])
	assert.Nil(t, out["job_id"])

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/interviews", `{"candidate_id":"ghost","scheduled_at":"2026-11-02T10:00:00Z"}`).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/interviews", `{"candidate_id":"c1","scheduled_at":"tomorrow"}`).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/interviews", `{"candidate_id":"c1"}`).Code)
}

func TestUpdateAndDeleteInterviewHandlers(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	at := time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC)
	notes := "strong systems design"
	h.ivs.On("Update", mock.Anything, "iv1", domain.InterviewUpdate{ScheduledAt: &at, Notes: &notes}).
		Return(domain.Interview{ID: "iv1", CandidateID: "c1", ScheduledAt: at, Notes: notes}, nil).Once()
	h.ivs.On("Delete", mock.Anything, "iv1").Return(nil).Once()
	h.ivs.On("Delete", mock.Anything, "iv2").Return(domain.ErrNotFound).Once()

	rec := h.do(t, http.MethodPut, "/interviews/iv1", `{"scheduled_at":"2026-11-03T09:00:00Z","notes":"strong systems design"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, notes, decodeBody(t, rec)["notes"])

	rec = h.do(t, http.MethodDelete, "/interviews/iv1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodDelete, "/interviews/iv2", "").Code)
}

func TestQuestionsHandler(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.cands.On("Get", mock.Anything, "c1").Return(domain.Candidate{ID: "c1", Name: "Jane", ResumeText: "Go developer"}, nil)
	h.jobs.On("Get", mock.Anything, "j1").Return(domain.Job{ID: "j1", Title: "Backend", Description: "Go services"}, nil)

	rec := h.do(t, http.MethodPost, "/ai/candidates/c1/questions", `{"job_id":"j1","count":3,"difficulty":"hard"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "heuristic", rec.Header().Get(httpserver.TierHeader))
	out := decodeBody(t, rec)
	assert.Equal(t, "Jane", out["candidate_name"])
	assert.Equal(t, "Backend", out["job_title"])
	qs, ok := out["questions"].([]any)
	require.True(t, ok)
	assert.Len(t, qs, 3)
}

func TestQuestionsHandler_Validation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	for _, body := range []string{`{}`, `{"job_id":"j1","count":21}`, `{"job_id":"j1","count":-1}`} {
		rec := h.do(t, http.MethodPost, "/ai/candidates/c1/questions", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestTemplatesHandler(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/ai/question-templates/Senior", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "senior", out["experience_level"])
	assert.Len(t, out["questions"], 5)

	rec = h.do(t, http.MethodGet, "/ai/question-templates/guru", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeFeedbackHandler_SavesNotesFirst(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	const notes = "Clear communicator, solid Go fundamentals, weak on testing."
	h.ivs.On("Get", mock.Anything, "iv1").Return(domain.Interview{ID: "iv1", CandidateID: "c1"}, nil)
	h.cands.On("Get", mock.Anything, "c1").Return(domain.Candidate{ID: "c1", Name: "Jane"}, nil)
	h.ivs.On("UpdateNotes", mock.Anything, "iv1", notes).Return(nil).Once()

	rec := h.do(t, http.MethodPost, "/ai/interviews/iv1/analyze-feedback", `{"interview_notes":"`+notes+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "heuristic", rec.Header().Get(httpserver.TierHeader))
	out := decodeBody(t, rec)
	assert.Equal(t, "iv1", out["interview_id"])
	assert.Equal(t, "Position", out["job_title"])
}

func TestAnalyzeFeedbackHandler_ShortNotes(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/ai/interviews/iv1/analyze-feedback", `{"interview_notes":"ok"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	h.ivs.AssertNotCalled(t, "UpdateNotes", mock.Anything, mock.Anything, mock.Anything)
}

func TestInterviewSummaryHandler_NoNotes(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.cands.On("Get", mock.Anything, "c1").Return(domain.Candidate{ID: "c1"}, nil)
	h.ivs.On("ListByCandidate", mock.Anything, "c1").Return([]domain.Interview{{ID: "iv1", CandidateID: "c1"}}, nil)

	rec := h.do(t, http.MethodPost, "/ai/candidates/c1/interview-summary", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReparseHandler(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.cands.On("Get", mock.Anything, "c1").Return(domain.Candidate{ID: "c1"}, nil)

	rec := h.do(t, http.MethodPost, "/admin/candidates/c1/reparse", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "processing", decodeBody(t, rec)["parse_status"])
	assert.Equal(t, []string{"c1"}, h.parses.ids)
}
