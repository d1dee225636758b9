package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeStoreError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeSessionAlreadyActive = "SESSION_ALREADY_ACTIVE"
	CodeNoActiveSession      = "NO_ACTIVE_SESSION"
	CodeDuplicateRequest     = "DUPLICATE_REQUEST"
	CodeStoreError           = "STORE_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
)

// Common error constructors

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

// SessionAlreadyActive rejects a second start while a session is live.
func SessionAlreadyActive(caseID string) *AppError {
	return New(CodeSessionAlreadyActive, fmt.Sprintf("a session is already active for case %s", caseID))
}

// NoActiveSession rejects a session-scoped operation with no session loaded.
func NoActiveSession(caseID string) *AppError {
	return New(CodeNoActiveSession, fmt.Sprintf("no active session for case %s", caseID))
}

// StoreError wraps a persistence or row-authorization failure. The
// coordinator never retries these; the caller re-invokes the action.
func StoreError(cause error) *AppError {
	return &AppError{
		Code:    CodeStoreError,
		Message: "record store operation failed",
		Cause:   cause,
	}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
