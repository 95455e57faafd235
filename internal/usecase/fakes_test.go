package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

type memCandidates struct {
	mu       sync.Mutex
	seq      int
	rows     map[string]domain.Candidate
	statuses []domain.ParseStatus
}

func newMemCandidates(cs ...domain.Candidate) *memCandidates {
	m := &memCandidates{rows: map[string]domain.Candidate{}}
	for _, c := range cs {
		m.rows[c.ID] = c
	}
	return m
}

func (m *memCandidates) Create(_ domain.Context, c domain.Candidate) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	c.ID = fmt.Sprintf("cand-%d", m.seq)
	m.rows[c.ID] = c
	return c.ID, nil
}

func (m *memCandidates) Get(_ domain.Context, id string) (domain.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return domain.Candidate{}, fmt.Errorf("op=candidate.get: %w", domain.ErrNotFound)
	}
	return c, nil
}

func (m *memCandidates) List(_ domain.Context, _ domain.ListParams) ([]domain.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Candidate, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCandidates) UpdateScore(_ domain.Context, id string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Score = &score
	m.rows[id] = c
	return nil
}

func (m *memCandidates) MarkParseStatus(_ domain.Context, id string, status domain.ParseStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.ParseStatus = status
	m.rows[id] = c
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memCandidates) ListStaleParses(domain.Context, time.Time, int) ([]string, error) {
	return nil, nil
}

type memJobs struct {
	mu   sync.Mutex
	rows map[string]domain.Job
}

func newMemJobs(js ...domain.Job) *memJobs {
	m := &memJobs{rows: map[string]domain.Job{}}
	for _, j := range js {
		m.rows[j.ID] = j
	}
	return m
}

func (m *memJobs) Create(_ domain.Context, j domain.Job) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j.ID = fmt.Sprintf("job-%d", len(m.rows)+1)
	m.rows[j.ID] = j
	return j.ID, nil
}

func (m *memJobs) Get(_ domain.Context, id string) (domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.rows[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("op=job.get: %w", domain.ErrNotFound)
	}
	return j, nil
}

func (m *memJobs) List(domain.Context, domain.ListParams) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Job, 0, len(m.rows))
	for _, j := range m.rows {
		out = append(out, j)
	}
	return out, nil
}

type memInterviews struct {
	mu   sync.Mutex
	rows map[string]domain.Interview
	seq  int
}

func newMemInterviews(ivs ...domain.Interview) *memInterviews {
	m := &memInterviews{rows: map[string]domain.Interview{}}
	for _, iv := range ivs {
		m.rows[iv.ID] = iv
	}
	return m
}

func (m *memInterviews) Create(_ domain.Context, iv domain.Interview) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	iv.ID = fmt.Sprintf("iv-%d", m.seq)
	m.rows[iv.ID] = iv
	return iv.ID, nil
}

func (m *memInterviews) Get(_ domain.Context, id string) (domain.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.rows[id]
	if !ok {
		return domain.Interview{}, fmt.Errorf("op=interview.get: %w", domain.ErrNotFound)
	}
	return iv, nil
}

func (m *memInterviews) List(domain.Context, domain.ListParams) ([]domain.Interview, error) {
	return m.filter(func(domain.Interview) bool { return true }), nil
}

func (m *memInterviews) ListByCandidate(_ domain.Context, id string) ([]domain.Interview, error) {
	return m.filter(func(iv domain.Interview) bool { return iv.CandidateID == id }), nil
}

func (m *memInterviews) ListByJob(_ domain.Context, id string) ([]domain.Interview, error) {
	return m.filter(func(iv domain.Interview) bool { return iv.JobID != nil && *iv.JobID == id }), nil
}

func (m *memInterviews) filter(keep func(domain.Interview) bool) []domain.Interview {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Interview
	for _, iv := range m.rows {
		if keep(iv) {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func (m *memInterviews) Update(_ domain.Context, id string, u domain.InterviewUpdate) (domain.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.rows[id]
	if !ok {
		return domain.Interview{}, domain.ErrNotFound
	}
	if u.JobID != nil {
		iv.JobID = u.JobID
	}
	if u.ScheduledAt != nil {
		iv.ScheduledAt = *u.ScheduledAt
	}
	if u.Interviewer != nil {
		iv.Interviewer = *u.Interviewer
	}
	if u.Notes != nil {
		iv.Notes = *u.Notes
	}
	m.rows[id] = iv
	return iv, nil
}

func (m *memInterviews) UpdateNotes(_ domain.Context, id, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	iv.Notes = notes
	m.rows[id] = iv
	return nil
}

func (m *memInterviews) Delete(_ domain.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// stubPipeline records requests and answers with fixed fields tagged heuristic.
type stubPipeline struct {
	mu     sync.Mutex
	reqs   []domain.ExtractionRequest
	fields map[string]any
	err    error
	// onExtract runs before the answer, e.g. to observe side effects ordered before the call.
	onExtract func(domain.ExtractionRequest)
}

func (p *stubPipeline) Extract(_ context.Context, req domain.ExtractionRequest) (domain.ExtractionResult, error) {
	p.mu.Lock()
	p.reqs = append(p.reqs, req)
	p.mu.Unlock()
	if p.onExtract != nil {
		p.onExtract(req)
	}
	if p.err != nil {
		return domain.ExtractionResult{}, p.err
	}
	fields := make(map[string]any, len(p.fields))
	for k, v := range p.fields {
		fields[k] = v
	}
	return domain.ExtractionResult{Task: req.Task, Fields: fields, Tier: domain.TierHeuristic}, nil
}

func (p *stubPipeline) last() domain.ExtractionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reqs[len(p.reqs)-1]
}

type stubExtractor struct {
	text string
	err  error
}

func (e stubExtractor) ExtractPath(context.Context, string, string) (string, error) {
	return e.text, e.err
}

type recordingQueue struct {
	ids []string
	err error
}

func (q *recordingQueue) EnqueueParse(_ domain.Context, id string) error {
	q.ids = append(q.ids, id)
	return q.err
}

type recordingSubmitter struct{ ids []string }

func (s *recordingSubmitter) Submit(_ domain.Context, id string) error {
	s.ids = append(s.ids, id)
	return nil
}
