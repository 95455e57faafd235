// Command recruitctl runs the extraction pipeline locally on files: resume
// parsing, ranking, interview questions, feedback analysis and ATS audits.
// Results go to stdout as JSON; the producing tier goes to stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	ai "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/ai"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/textextractor"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/app"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/extraction"
	"github.com/fairyhunter13/ai-recruit-assistant/pkg/textx"
)

// cli carries what every subcommand needs. setup builds the pipeline lazily so
// tests can inject one without touching the environment.
type cli struct {
	ex     extraction.Extractor
	out    io.Writer
	errOut io.Writer
	setup  func(ctx context.Context) (extraction.Extractor, func(), error)
}

func main() {
	_ = godotenv.Load()
	c := &cli{out: os.Stdout, errOut: os.Stderr, setup: setupPipeline}
	if err := newRootCmd(c).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	var release func()
	root := &cobra.Command{
		Use:           "recruitctl",
		Short:         "Run resume and interview extraction tasks locally",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.ex != nil {
				return nil
			}
			ex, closeFn, err := c.setup(cmd.Context())
			if err != nil {
				return err
			}
			c.ex, release = ex, closeFn
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if release != nil {
				release()
			}
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	root.AddCommand(
		newParseCmd(c),
		newRankCmd(c),
		newQuestionsCmd(c),
		newFeedbackCmd(c),
		newOptimizeCmd(c),
	)
	return root
}

func setupPipeline(ctx context.Context) (extraction.Extractor, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(observability.NewLogger(cfg, os.Stderr))
	providers, err := ai.NewProviders(ctx, cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	p, err := app.NewPipeline(cfg, providers.Generators)
	if err != nil {
		_ = providers.Close()
		return nil, nil, err
	}
	return p, func() { _ = providers.Close() }, nil
}

// readDocument extracts the text of a .pdf, .docx or .txt file.
func readDocument(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	text, err := textextractor.NewLocal(filepath.Dir(abs)).ExtractPath(ctx, filepath.Base(abs), abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text = textx.SanitizeText(text)
	if text == "" {
		return "", fmt.Errorf("read %s: %w: no text found", path, domain.ErrInvalidArgument)
	}
	return text, nil
}

// readJob returns the title (first line) and the full text of a job description file.
func readJob(ctx context.Context, path string) (title, description string, err error) {
	description, err = readDocument(ctx, path)
	if err != nil {
		return "", "", err
	}
	title, _, _ = strings.Cut(description, "\n")
	return strings.TrimSpace(title), description, nil
}

// parseResume runs the resume parse so later tasks can use the structured profile.
func (c *cli) parseResume(ctx context.Context, text string) (map[string]any, error) {
	res, err := c.ex.Extract(ctx, domain.ExtractionRequest{Task: domain.TaskResumeParse, Text: text})
	if err != nil {
		return nil, err
	}
	return res.Fields, nil
}

func (c *cli) emit(res domain.ExtractionResult) error {
	b, err := json.MarshalIndent(res.Fields, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(c.out, string(b)); err != nil {
		return err
	}
	provider := res.Provider
	if provider == "" {
		provider = "-"
	}
	_, err = fmt.Fprintf(c.errOut, "tier=%s provider=%s\n", res.Tier, provider)
	return err
}
