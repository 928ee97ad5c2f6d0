package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeUpstream    = "UPSTREAM_ERROR"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeUnavailable = "UNAVAILABLE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code           string // Error code (e.g., "NOT_FOUND", "RATE_LIMITED")
	Message        string // Human-readable error message
	Status         int    // HTTP status code returned to our own callers
	UpstreamStatus int    // Status reported by GitHub, zero when not applicable
	Err            error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewRateLimitedError reports an exhausted GitHub quota. Signing in raises it.
func NewRateLimitedError() *AppError {
	return &AppError{
		Code:           ErrCodeRateLimited,
		Message:        "API rate limit exceeded",
		Status:         http.StatusTooManyRequests,
		UpstreamStatus: http.StatusForbidden,
	}
}

// NewUpstreamError creates an UPSTREAM_ERROR for any other non-success response.
func NewUpstreamError(status int, description string) *AppError {
	return &AppError{
		Code:           ErrCodeUpstream,
		Message:        fmt.Sprintf("API request failed: %s", description),
		Status:         http.StatusBadGateway,
		UpstreamStatus: status,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewUnavailableError creates an UNAVAILABLE error for saturated queues.
func NewUnavailableError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: message,
		Status:  http.StatusServiceUnavailable,
	}
}

// Wrap returns err as an *AppError. Errors outside the taxonomy become INTERNAL_ERROR.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// Code returns the error code of err, or the empty string for nil.
func Code(err error) string {
	if err == nil {
		return ""
	}
	return Wrap(err).Code
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool {
	return Code(err) == ErrCodeNotFound
}

// IsRateLimited reports whether err is a RATE_LIMITED error.
func IsRateLimited(err error) bool {
	return Code(err) == ErrCodeRateLimited
}
