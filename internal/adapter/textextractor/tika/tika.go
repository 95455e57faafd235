// Package tika extracts document text through an Apache Tika server.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/textextractor"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/pkg/textx"
)

const defaultBaseURL = "http://localhost:9998"

// Client performs PUT /tika with Accept: text/plain and implements domain.TextExtractor.
// See https://tika.apache.org/server/ for the API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	roots      []string
}

// New constructs a Tika client. Uploads are read from roots (os.TempDir when empty).
func New(baseURL string, timeout time.Duration, roots ...string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		roots:      roots,
	}
}

// ExtractPath uploads the file at path to Tika and returns its plain text.
func (c *Client) ExtractPath(ctx context.Context, fileName, path string) (string, error) {
	if !textextractor.Supported(fileName) {
		return "", fmt.Errorf("op=tika.ExtractPath: %w: unsupported file type", domain.ErrInvalidArgument)
	}
	body, err := textextractor.ReadUpload(path, c.roots...)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tika", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=tika.ExtractPath: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", textextractor.ContentType(fileName))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("op=tika.ExtractPath: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusUnsupportedMediaType {
		return "", fmt.Errorf("op=tika.ExtractPath: %w: tika status %d", domain.ErrInvalidArgument, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("op=tika.ExtractPath: tika status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("op=tika.ExtractPath: %w", err)
	}
	return textx.NormalizeLines(string(b)), nil
}

// Ping reports whether the Tika server answers GET /version.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tika status %d", resp.StatusCode)
	}
	return nil
}
