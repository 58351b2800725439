// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrNoResolution indicates a name or term could not be resolved to a
	// taxon. Not a failure; callers fall through to the next search tier.
	ErrNoResolution = errors.New("no taxonomic resolution available")

	// ErrInvalidInput indicates a caller supplied invalid filter input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrContextCanceled indicates context was canceled.
	ErrContextCanceled = errors.New("context canceled")

	// ErrSessionNotFound indicates an unknown conversation session id.
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError represents filter validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// UpstreamError represents failures talking to an upstream HTTP service
// (the occurrence search engine, the species lookup, or the geocoder).
// A non-2xx status or transport error is always surfaced as an UpstreamError
// so that callers can distinguish a hard failure from a legitimate empty
// result set.
type UpstreamError struct {
	Service    string
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (url=%s, status=%d): %v", e.Service, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error (url=%s): %v", e.Service, e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream service error.
func NewUpstreamError(service, url string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{
		Service:    service,
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
