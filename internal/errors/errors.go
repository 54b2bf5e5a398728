// Package errors defines the structured error taxonomy used across
// liveserve. Request-path failures map onto HTTP statuses without
// revealing which check rejected the request.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	// ErrorTypeInvalidPath marks a request tail that escaped or tried to
	// escape the serving root.
	ErrorTypeInvalidPath ErrorType = "invalid_path"

	// ErrorTypeNotFound marks a missing file or a directory without an
	// index document.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeConfig marks invalid or unresolvable configuration.
	ErrorTypeConfig ErrorType = "config"

	// ErrorTypeNetwork marks listener and transport failures.
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeInternal marks I/O and encoding failures while handling an
	// otherwise valid request.
	ErrorTypeInternal ErrorType = "internal"
)

// ServeError is a structured error type with context.
type ServeError struct {
	Type    ErrorType
	Message string
	Path    string
	Cause   error
}

// Error implements the error interface.
func (e *ServeError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s]", e.Type))
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ServeError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type.
func (e *ServeError) Is(target error) bool {
	var t *ServeError
	if errors.As(target, &t) {
		return e.Type == t.Type
	}
	return false
}

// HTTPStatus maps the error category to the status surfaced to clients.
// Invalid paths and missing files are indistinguishable on the wire.
func (e *ServeError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeInvalidPath, ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// InvalidPath creates an invalid-path error for a request tail.
func InvalidPath(tail string) *ServeError {
	return &ServeError{
		Type:    ErrorTypeInvalidPath,
		Message: "path escapes serving root",
		Path:    tail,
	}
}

// NotFound creates a not-found error for a request tail.
func NotFound(tail string) *ServeError {
	return &ServeError{
		Type:    ErrorTypeNotFound,
		Message: "no such file",
		Path:    tail,
	}
}

// Internal wraps an I/O or encoding failure.
func Internal(msg string, cause error) *ServeError {
	return &ServeError{
		Type:    ErrorTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// Config wraps a configuration failure.
func Config(msg string, cause error) *ServeError {
	return &ServeError{
		Type:    ErrorTypeConfig,
		Message: msg,
		Cause:   cause,
	}
}

// Network wraps a listener or transport failure.
func Network(msg string, cause error) *ServeError {
	return &ServeError{
		Type:    ErrorTypeNetwork,
		Message: msg,
		Cause:   cause,
	}
}

// StatusFor returns the HTTP status for any error, defaulting to 500
// for errors outside the taxonomy.
func StatusFor(err error) int {
	var se *ServeError
	if errors.As(err, &se) {
		return se.HTTPStatus()
	}
	return http.StatusInternalServerError
}
