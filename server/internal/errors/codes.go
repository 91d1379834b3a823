// Package errors defines the error taxonomy shared by the HTTP routers and
// the domain services.
package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for service operations.
type ErrorCode string

const (
	// ErrCodeInvalidPreference indicates a malformed preference value for a recognized key.
	ErrCodeInvalidPreference ErrorCode = "INVALID_PREFERENCE"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates a referenced user, receipt, or preference record is absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUpstreamFormat indicates upstream output failed JSON parsing after fence-stripping.
	ErrCodeUpstreamFormat ErrorCode = "UPSTREAM_FORMAT"
	// ErrCodeUpstreamUnavailable indicates a failure calling the object store, document store, or oracle.
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// ServiceError represents a structured error carried across layers.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Key is the offending preference key for INVALID_PREFERENCE errors.
	Key string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Key, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// InvalidPreference creates a validation error carrying the offending key and reason.
func InvalidPreference(key, reason string) *ServiceError {
	return &ServiceError{Code: ErrCodeInvalidPreference, Key: key, Message: reason}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeInvalidArgument, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeNotFound, Message: msg}
}

// UpstreamFormat creates an upstream format error.
func UpstreamFormat(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeUpstreamFormat, Message: msg, Cause: cause}
}

// UpstreamUnavailable creates a transient upstream error.
func UpstreamUnavailable(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeUpstreamUnavailable, Message: msg, Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeTimeout, Message: msg}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if svcErr, ok := err.(*ServiceError); ok {
		return svcErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ServiceError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if svcErr, ok := err.(*ServiceError); ok {
		return svcErr.Code
	}
	return defaultCode
}
