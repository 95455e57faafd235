package domain

import (
	"errors"
	"fmt"
)

// Extraction error taxonomy. Typed errors below match these through errors.Is.
var (
	ErrGeneration      = errors.New("generation service error")
	ErrMalformedOutput = errors.New("malformed output")
	ErrSchemaViolation = errors.New("schema violation")
	ErrCallerContract  = errors.New("caller contract violation")
)

// GenerationFailure classifies a GenerationServiceError.
type GenerationFailure string

const (
	FailureTimeout   GenerationFailure = "timeout"
	FailureAuth      GenerationFailure = "auth"
	FailureRateLimit GenerationFailure = "rate_limit"
	FailureTransport GenerationFailure = "transport"
	FailureUpstream  GenerationFailure = "upstream"
	FailureEmpty     GenerationFailure = "empty"
	FailureSkipped   GenerationFailure = "skipped"
)

// GenerationServiceError reports a failed call to the external generation service.
type GenerationServiceError struct {
	Provider string
	Kind     GenerationFailure
	Status   int
	Err      error
}

func (e *GenerationServiceError) Error() string {
	msg := fmt.Sprintf("generation service %s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationServiceError) Unwrap() error { return e.Err }

func (e *GenerationServiceError) Is(target error) bool {
	switch target {
	case ErrGeneration:
		return true
	case ErrUpstreamTimeout:
		return e.Kind == FailureTimeout
	case ErrUpstreamRateLimit:
		return e.Kind == FailureRateLimit
	}
	return false
}

// MalformedOutputError reports raw output that could not be structurally parsed.
type MalformedOutputError struct {
	Reason string
	Raw    string
}

func (e *MalformedOutputError) Error() string {
	return "malformed output: " + e.Reason
}

func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedOutput || target == ErrSchemaInvalid
}

// SchemaViolationError names the field that failed validation after coercion.
type SchemaViolationError struct {
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation at %q: %s", e.Field, e.Reason)
}

func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchemaViolation || target == ErrSchemaInvalid
}

// CallerContractError reports an invalid request; it is never degraded to a fallback result.
type CallerContractError struct {
	Field  string
	Reason string
}

func (e *CallerContractError) Error() string {
	if e.Field == "" {
		return "caller contract: " + e.Reason
	}
	return fmt.Sprintf("caller contract: %s: %s", e.Field, e.Reason)
}

func (e *CallerContractError) Is(target error) bool {
	return target == ErrCallerContract || target == ErrInvalidArgument
}

// IsFallbackEligible reports whether err should advance the fallback chain to the next tier.
func IsFallbackEligible(err error) bool {
	return errors.Is(err, ErrGeneration) || errors.Is(err, ErrMalformedOutput) || errors.Is(err, ErrSchemaViolation)
}
