// Package errors provides structured error handling with context propagation and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeNotAuthenticated indicates an owner-scoped operation without a signed-in owner (HTTP 401)
	TypeNotAuthenticated ErrorType = "not_authenticated"
	// TypeRemoteUnavailable indicates the remote store could not be reached (HTTP 503)
	TypeRemoteUnavailable ErrorType = "remote_unavailable"
	// TypeConflict indicates an illegal state transition (HTTP 409)
	TypeConflict ErrorType = "conflict"
	// TypeInternal indicates an unexpected error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeNotAuthenticated:
		return http.StatusUnauthorized
	case TypeConflict:
		return http.StatusConflict
	case TypeRemoteUnavailable:
		return http.StatusServiceUnavailable
	case TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return &Error{
		Type:    TypeValidation,
		Message: message,
		Context: make(map[string]any),
	}
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return &Error{
		Type:    TypeNotFound,
		Message: message,
		Context: make(map[string]any),
	}
}

// ConflictError creates a new conflict error (HTTP 409).
func ConflictError(message string) *Error {
	return &Error{
		Type:    TypeConflict,
		Message: message,
		Context: make(map[string]any),
	}
}

// RemoteUnavailableError creates a new remote-store error (HTTP 503).
func RemoteUnavailableError(message string, cause error) *Error {
	return &Error{
		Type:    TypeRemoteUnavailable,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NotAuthenticatedError creates a new not-authenticated error (HTTP 401).
func NotAuthenticatedError(message string) *Error {
	return &Error{
		Type:    TypeNotAuthenticated,
		Message: message,
		Context: make(map[string]any),
	}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{
		Type:    TypeInternal,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error. Domain
// sentinels map to their taxonomy type; an *Error passes through unchanged;
// anything else wraps as internal.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return ValidationError(err.Error())
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return RemoteUnavailableError("remote store unavailable", err)
	case errors.Is(err, domain.ErrNotAuthenticated):
		return NotAuthenticatedError("no owner signed in")
	case errors.Is(err, domain.ErrAppNotFound),
		errors.Is(err, domain.ErrLogNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrNoActiveSession):
		return NotFoundError(err.Error())
	case errors.Is(err, domain.ErrLogClosed),
		errors.Is(err, domain.ErrSessionFinished),
		errors.Is(err, domain.ErrSessionRunning):
		return ConflictError(err.Error())
	}

	return InternalError("internal server error", err)
}
