package service

import "errors"

// ErrNoWorkingProvider indicates that every provider failed during failover.
var ErrNoWorkingProvider = errors.New("no working AI provider available")

// ErrNotOpenEnded indicates a scoring request for a question without a rubric.
var ErrNotOpenEnded = errors.New("question is not open-ended")

// GenerationError reports that a generation call could not produce usable
// questions. Diagnostic carries a bounded excerpt of the raw model output, or
// the provider failure message, for display by the caller.
type GenerationError struct {
	Message    string
	Diagnostic string
	Err        error
}

func (e *GenerationError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel the failure maps to, if any, so callers can
// distinguish a total provider outage from unusable model output.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ValidationError labels generated output that violates a structural
// invariant (wrong option count, dangling answer key, rubric marks not
// summing to the question total). Violations are reported, never repaired.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
