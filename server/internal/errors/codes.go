package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for API operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates the referenced resource does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimitExceeded indicates a throttle has tripped.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeServiceUnavailable indicates a vendor service is not available.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeGenerationFailed indicates reply or content generation failure.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodeInternal indicates an unexpected server failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// APIError represents a structured error for API operations.
type APIError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *APIError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *APIError {
	return &APIError{Code: ErrCodeInvalidArgument, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *APIError {
	return &APIError{Code: ErrCodeNotFound, Message: msg}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *APIError {
	return &APIError{Code: ErrCodeUnauthorized, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *APIError {
	return &APIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// ServiceUnavailable creates a service unavailable error.
func ServiceUnavailable(msg string) *APIError {
	return &APIError{Code: ErrCodeServiceUnavailable, Message: msg}
}

// GenerationFailed creates a generation failed error with a cause.
func GenerationFailed(msg string, cause error) *APIError {
	return &APIError{Code: ErrCodeGenerationFailed, Message: msg, Cause: cause}
}

// Internal creates an internal error with a cause.
func Internal(msg string, cause error) *APIError {
	return &APIError{Code: ErrCodeInternal, Message: msg, Cause: cause}
}
