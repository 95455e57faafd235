package tika_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

func upload(t *testing.T, name, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return dir, p
}

func TestClient_ExtractPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		fileName string
		wantCT   string
	}{
		{"text", "cv.txt", "text/plain"},
		{"pdf", "cv.pdf", "application/pdf"},
		{"docx", "cv.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, "/tika", r.URL.Path)
				assert.Equal(t, "text/plain", r.Header.Get("Accept"))
				assert.Equal(t, tt.wantCT, r.Header.Get("Content-Type"))
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, "raw bytes", string(body))
				_, _ = w.Write([]byte("  Jane   Doe \n\n\n Go, SQL \x00"))
			}))
			t.Cleanup(srv.Close)

			dir, p := upload(t, tt.fileName, "raw bytes")
			got, err := tika.New(srv.URL+"/", time.Second, dir).ExtractPath(context.Background(), tt.fileName, p)
			require.NoError(t, err)
			assert.Equal(t, "Jane Doe\n\nGo, SQL", got)
		})
	}
}

func TestClient_ExtractPath_Errors(t *testing.T) {
	t.Parallel()
	status := func(code int) *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))
		t.Cleanup(srv.Close)
		return srv
	}
	dir, p := upload(t, "cv.pdf", "x")

	_, err := tika.New(status(http.StatusUnprocessableEntity).URL, time.Second, dir).ExtractPath(context.Background(), "cv.pdf", p)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = tika.New(status(http.StatusInternalServerError).URL, time.Second, dir).ExtractPath(context.Background(), "cv.pdf", p)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = tika.New("http://unused", time.Second, dir).ExtractPath(context.Background(), "cv.exe", p)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = tika.New("http://unused", time.Second, t.TempDir()).ExtractPath(context.Background(), "cv.pdf", p)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestClient_ExtractPath_ContextCancelled(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	dir, p := upload(t, "cv.txt", "x")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := tika.New(srv.URL, 5*time.Second, dir).ExtractPath(ctx, "cv.txt", p)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/version" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("Apache Tika 2.9.2"))
	}))
	t.Cleanup(srv.Close)
	assert.NoError(t, tika.New(srv.URL, time.Second).Ping(context.Background()))
}
