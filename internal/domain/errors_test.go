package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorConstants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrConflict", ErrConflict, "conflict"},
		{"ErrGeneration", ErrGeneration, "generation service error"},
		{"ErrMalformedOutput", ErrMalformedOutput, "malformed output"},
		{"ErrSchemaViolation", ErrSchemaViolation, "schema violation"},
		{"ErrCallerContract", ErrCallerContract, "caller contract violation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestTypedErrors_Is(t *testing.T) {
	t.Parallel()
	timeout := &GenerationServiceError{Provider: "openai", Kind: FailureTimeout, Err: context.DeadlineExceeded}
	limited := &GenerationServiceError{Provider: "openai", Kind: FailureRateLimit, Status: 429}
	malformed := &MalformedOutputError{Reason: "no JSON object found"}
	violation := &SchemaViolationError{Field: "score", Reason: "missing required field"}
	contract := &CallerContractError{Field: "task", Reason: "unknown task kind"}

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"timeout is generation", timeout, ErrGeneration, true},
		{"timeout is upstream timeout", timeout, ErrUpstreamTimeout, true},
		{"timeout unwraps deadline", timeout, context.DeadlineExceeded, true},
		{"timeout is not rate limit", timeout, ErrUpstreamRateLimit, false},
		{"rate limit is upstream rate limit", limited, ErrUpstreamRateLimit, true},
		{"malformed", malformed, ErrMalformedOutput, true},
		{"malformed is not violation", malformed, ErrSchemaViolation, false},
		{"violation", violation, ErrSchemaViolation, true},
		{"contract", contract, ErrCallerContract, true},
		{"contract is invalid argument", contract, ErrInvalidArgument, true},
		{"wrapped contract", fmt.Errorf("op=x: %w", contract), ErrCallerContract, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestIsFallbackEligible(t *testing.T) {
	t.Parallel()
	assert.True(t, IsFallbackEligible(&GenerationServiceError{Kind: FailureAuth}))
	assert.True(t, IsFallbackEligible(fmt.Errorf("wrap: %w", &MalformedOutputError{})))
	assert.True(t, IsFallbackEligible(&SchemaViolationError{Field: "score"}))
	assert.False(t, IsFallbackEligible(&CallerContractError{Reason: "x"}))
	assert.False(t, IsFallbackEligible(context.Canceled))
	assert.False(t, IsFallbackEligible(ErrNotFound))
}

func TestGenerationServiceError_Message(t *testing.T) {
	t.Parallel()
	err := &GenerationServiceError{Provider: "gemini", Kind: FailureUpstream, Status: 502, Err: errors.New("bad gateway")}
	assert.Equal(t, "generation service gemini: upstream (status 502): bad gateway", err.Error())
}

func TestTaskKind_Valid(t *testing.T) {
	t.Parallel()
	for _, k := range TaskKinds() {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, TaskKind("summarize").Valid())
	assert.False(t, TaskKind("").Valid())
}

func TestParseExperienceLevel(t *testing.T) {
	t.Parallel()
	lvl, ok := ParseExperienceLevel("senior")
	assert.True(t, ok)
	assert.Equal(t, LevelSenior, lvl)
	_, ok = ParseExperienceLevel("principal")
	assert.False(t, ok)
}
