package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/extraction"
)

const resumeText = `Jane Doe
jane@example.com | +1 555 0100

Summary
Backend engineer building Go services on PostgreSQL and Kubernetes.

Skills
Go, PostgreSQL, Kubernetes, Docker

Experience
Senior Engineer, Acme Corp, 2019 - 2024
- Built payment APIs in Go
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func run(t *testing.T, args ...string) (map[string]any, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := &cli{
		out:    &out,
		errOut: &errOut,
		setup: func(context.Context) (extraction.Extractor, func(), error) {
			return extraction.NewPipeline(extraction.Options{}), nil, nil
		},
	}
	root := newRootCmd(c)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return nil, errOut.String(), err
	}
	var fields map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &fields), out.String())
	return fields, errOut.String(), nil
}

func TestParseCommand(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	resume := writeFile(t, dir, "cv.txt", resumeText)

	fields, stderr, err := run(t, "parse", resume)
	require.NoError(t, err)
	assert.Contains(t, fields, "contact")
	assert.Contains(t, fields, "skills")
	assert.Contains(t, stderr, "tier=heuristic")
}

func TestRankCommand(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	resume := writeFile(t, dir, "cv.txt", resumeText)
	job := writeFile(t, dir, "job.txt", "Backend Engineer\nWe need Go, PostgreSQL and Kubernetes experience.")

	fields, _, err := run(t, "rank", "--job", job, resume)
	require.NoError(t, err)
	score, ok := fields["score"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)

	_, _, err = run(t, "rank", resume)
	assert.Error(t, err, "--job is required")
}

func TestQuestionsCommand(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	resume := writeFile(t, dir, "cv.txt", resumeText)

	fields, _, err := run(t, "questions", "--count", "4", "--difficulty", "hard", resume)
	require.NoError(t, err)
	assert.Len(t, fields["questions"], 4)

	_, _, err = run(t, "questions", "--count", "50", resume)
	assert.Error(t, err)
}

func TestFeedbackCommand_Rounds(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := writeFile(t, dir, "round1.txt", "Strong communication and clear answers on Go concurrency.")
	second := writeFile(t, dir, "round2.txt", "Struggled with system design trade-offs but recovered well.")

	fields, stderr, err := run(t, "feedback", "--notes", first, "--notes", second)
	require.NoError(t, err)
	assert.NotEmpty(t, fields)
	assert.Contains(t, stderr, "tier=")
}

func TestOptimizeCommand(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	resume := writeFile(t, dir, "cv.txt", resumeText)

	fields, _, err := run(t, "optimize", resume)
	require.NoError(t, err)
	assert.Contains(t, fields, "ats_score")
}

func TestReadDocument_Rejections(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, err := readDocument(context.Background(), writeFile(t, dir, "empty.txt", " \n "))
	assert.Error(t, err)
	_, err = readDocument(context.Background(), writeFile(t, dir, "cv.exe", "MZ"))
	assert.Error(t, err)
	_, err = readDocument(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
