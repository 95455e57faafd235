package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/textextractor"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/usecase"
)

type uploadForm struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
	Phone string `json:"phone" validate:"omitempty,max=50"`
}

// allowedMIMEFor checks sniffed content against the declared extension.
// DOCX files without the usual part ordering are detected as plain zip archives.
func allowedMIMEFor(m *mimetype.MIME, fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case textextractor.ExtPDF:
		return m.Is("application/pdf")
	case textextractor.ExtDOCX:
		return m.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") || m.Is("application/zip")
	case textextractor.ExtTXT:
		for ; m != nil; m = m.Parent() {
			if m.Is("text/plain") {
				return true
			}
		}
	}
	return false
}

// UploadHandler accepts a multipart resume upload, stores the candidate and
// schedules its parse. The file is staged in a temp file for the extractor.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB}}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		form := uploadForm{Name: r.FormValue("name"), Email: r.FormValue("email"), Phone: r.FormValue("phone")}
		if err := getValidator().Struct(form); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: file is required", domain.ErrInvalidArgument), map[string]string{"file": "required"})
			return
		}
		defer func() { _ = file.Close() }()
		if header.Size > maxBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB}}})
			return
		}
		if !textextractor.Supported(header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "unsupported file type, expected .pdf, .docx or .txt", Details: map[string]any{"filename": header.Filename}}})
			return
		}

		path, detected, err := stageUpload(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("op=http.upload: stage: %w", err), nil)
			return
		}
		defer func() { _ = os.Remove(path) }()
		if !allowedMIMEFor(detected, header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "file content does not match its extension", Details: map[string]any{"mime": detected.String(), "filename": header.Filename}}})
			return
		}

		c, err := s.Candidates.Upload(r.Context(), usecase.UploadInput{
			Name:     form.Name,
			Email:    form.Email,
			Phone:    form.Phone,
			FileName: filepath.Base(header.Filename),
			Path:     path,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, newCandidateView(c, false))
	}
}

// stageUpload copies the upload into a temp file and sniffs its type from the head.
func stageUpload(src multipart.File) (string, *mimetype.MIME, error) {
	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", nil, err
	}
	tmp, err := os.CreateTemp("", "resume-*")
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", nil, err
	}
	return tmp.Name(), detected, nil
}

// ListCandidatesHandler pages candidates.
func (s *Server) ListCandidatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := listParams(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		cs, err := s.Candidates.List(r.Context(), p)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(cs, func(c domain.Candidate) candidateView { return newCandidateView(c, false) }))
	}
}

// GetCandidateHandler returns one candidate including its resume text.
func (s *Server) GetCandidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.Candidates.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, newCandidateView(c, true))
	}
}

// RankHandler scores a candidate against a job.
func (s *Server) RankHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.Candidates.Rank(r.Context(), chi.URLParam(r, "job_id"), chi.URLParam(r, "candidate_id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeResult(w, http.StatusOK, res.Tier, newRankView(res))
	}
}

// OptimizeResumeHandler runs the ATS audit. An optional job_id query parameter
// compares the resume against that job.
func (s *Server) OptimizeResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.Candidates.Optimize(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("job_id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeResult(w, http.StatusOK, res.Tier, res.Fields)
	}
}

// KeywordSuggestionsHandler returns the keyword part of the ATS audit.
func (s *Server) KeywordSuggestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		res, err := s.Candidates.KeywordSuggestions(r.Context(), id, r.URL.Query().Get("job_id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeResult(w, http.StatusOK, res.Tier, withFields(map[string]any{"candidate_id": id}, res.Fields))
	}
}

// ReparseHandler schedules a new background parse; admin only.
func (s *Server) ReparseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.Candidates.Reparse(r.Context(), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"candidate_id": id, "parse_status": string(domain.ParseProcessing)})
	}
}
