package domain

import (
	"errors"
	"fmt"
)

// ValidationError is a terminal request error. It is surfaced to the client
// as a 4xx response and never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Recoverable attempt-loop failures. These are consumed by the retry loop in
// the orchestrator and never surfaced to the client directly.
var (
	// ErrRetrievalEmpty signals that an attempt yielded zero passages.
	ErrRetrievalEmpty = errors.New("retrieval returned no passages")
	// ErrQualityRejected signals that the retrieved set failed the
	// date-relevance check.
	ErrQualityRejected = errors.New("retrieved passages failed date relevance check")
)
