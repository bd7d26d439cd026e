package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrCodeAlreadyClaimed ErrorCode = "ALREADY_CLAIMED"
	ErrCodeInfrastructure ErrorCode = "INFRASTRUCTURE_ERROR"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// AppError is a typed application error. Domain errors (validation, not
// found, forbidden, already claimed) are surfaced to the caller verbatim and
// are never retried. Infrastructure errors are safe to retry with backoff.
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches two AppErrors by code, so sentinel-style comparisons with
// errors.Is keep working across wrapping.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithDetail attaches an extra key/value pair for the HTTP error payload.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Retryable reports whether the caller may retry the failed operation.
func (e *AppError) Retryable() bool {
	return e.Code == ErrCodeInfrastructure
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func Validationf(format string, args ...interface{}) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf(format, args...))
}

func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

func AlreadyClaimed(message string) *AppError {
	return New(ErrCodeAlreadyClaimed, message)
}

// Infrastructure wraps a store or network failure. Distinct from domain
// errors so callers can apply retry policy without misreading an outage as
// "gift not available".
func Infrastructure(message string, cause error) *AppError {
	return Wrap(ErrCodeInfrastructure, message, cause)
}

// CodeOf extracts the ErrorCode from any error, defaulting to internal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
