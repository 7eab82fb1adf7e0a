// Package apperr defines the error taxonomy shared by the pipeline and the
// HTTP surface.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors mapped to HTTP status codes by the handlers.
var (
	// ErrValidation marks malformed input. Maps to 400.
	ErrValidation = errors.New("validation error")
	// ErrAuth marks bad credentials, tokens or admin keys. Maps to 401.
	ErrAuth = errors.New("unauthorized")
	// ErrNotFound marks a missing resource. Maps to 404.
	ErrNotFound = errors.New("not found")
)

// Validation wraps a message as a validation error.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFound wraps a message as a not-found error.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Status maps an error to the HTTP status code the API surface reports.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Stage errors. Each pipeline stage converts its own failure into exactly one
// of these; the pipeline catches them and takes the stage's fallback, so none
// of them reach the transport layer.

// DetectionError is a language-detection failure.
type DetectionError struct{ Cause error }

func (e *DetectionError) Error() string { return "language detection failed: " + e.Cause.Error() }
func (e *DetectionError) Unwrap() error { return e.Cause }

// TranslationError is a translate-in or translate-out failure.
type TranslationError struct{ Cause error }

func (e *TranslationError) Error() string { return "translation failed: " + e.Cause.Error() }
func (e *TranslationError) Unwrap() error { return e.Cause }

// ClassificationError is an intent-classification call failure.
type ClassificationError struct{ Cause error }

func (e *ClassificationError) Error() string { return "intent classification failed: " + e.Cause.Error() }
func (e *ClassificationError) Unwrap() error { return e.Cause }

// LookupError is a catalog read failure.
type LookupError struct{ Cause error }

func (e *LookupError) Error() string { return "catalog lookup failed: " + e.Cause.Error() }
func (e *LookupError) Unwrap() error { return e.Cause }

// PersistenceError is a conversation-store write failure. Never blocks
// delivery of the response.
type PersistenceError struct{ Cause error }

func (e *PersistenceError) Error() string { return "conversation persistence failed: " + e.Cause.Error() }
func (e *PersistenceError) Unwrap() error { return e.Cause }
