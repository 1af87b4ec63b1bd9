package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for automation core errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Workflow contract error codes. These indicate programmer errors that will
// never succeed on retry (malformed definitions, unknown step kinds).
const (
	WORKFLOW_NIL             ErrorCode = "WORKFLOW_NIL"
	WORKFLOW_EMPTY           ErrorCode = "WORKFLOW_EMPTY"
	WORKFLOW_INVALID         ErrorCode = "WORKFLOW_INVALID"
	STEP_TYPE_UNKNOWN        ErrorCode = "STEP_TYPE_UNKNOWN"
	STEP_NOT_REGISTERED      ErrorCode = "STEP_NOT_REGISTERED"
	AUTOMATION_LEVEL_UNKNOWN ErrorCode = "AUTOMATION_LEVEL_UNKNOWN"
)

// Execution error codes
const (
	RESOURCE_EXHAUSTED  ErrorCode = "RESOURCE_EXHAUSTED"
	EXECUTION_TIMEOUT   ErrorCode = "EXECUTION_TIMEOUT"
	EXECUTION_CANCELLED ErrorCode = "EXECUTION_CANCELLED"
	VALIDATION_FAILED   ErrorCode = "VALIDATION_FAILED"
	ROLLBACK_FAILED     ErrorCode = "ROLLBACK_FAILED"
	CACHE_CORRUPT       ErrorCode = "CACHE_CORRUPT"
)

// Preference store error codes
const (
	PREFERENCE_PERSIST_FAILED ErrorCode = "PREFERENCE_PERSIST_FAILED"
)

// CoreError represents a structured error with error code, message, and
// optional cause. The Retryable flag lets callers branch on "retry later"
// (resource exhaustion) versus "this will never succeed as given" (contract
// violations).
type CoreError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a CoreError with the same Code.
func (e *CoreError) Is(target error) bool {
	var coreErr *CoreError
	if errors.As(target, &coreErr) {
		return e.Code == coreErr.Code
	}
	return false
}

// NewError creates a new non-retryable CoreError with the given code and message.
func NewError(code ErrorCode, message string) *CoreError {
	return &CoreError{
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// NewRetryableError creates a new retryable CoreError with the given code and
// message. Use this for transient conditions that may succeed after backoff.
func NewRetryableError(code ErrorCode, message string) *CoreError {
	return &CoreError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable CoreError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *CoreError {
	return &CoreError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// IsRetryable reports whether err is a CoreError marked retryable.
func IsRetryable(err error) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Retryable
	}
	return false
}
