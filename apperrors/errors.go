package apperrors

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
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return e.Cause.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Predefined error codes
const (
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeDatabaseError  = "DATABASE_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeFetchFailed    = "FETCH_FAILED"
	CodeTimeout        = "TIMEOUT"
	CodeDisposed       = "DISPOSED"
	CodeBackendFailure = "BACKEND_FAILURE"
	CodeReportFailed   = "REPORT_FAILED"
	CodeUnknown        = "UNKNOWN"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{Code: appErr.Code, Message: message, Cause: err}
	}
	return &AppError{Code: CodeInternalError, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode wraps err under the given code, replacing any code further down the chain.
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Cause: err}
}

// GetCode returns the code of the outermost AppError in the chain, or CodeUnknown.
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && GetCode(err) == code
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func Disposed(resource string) *AppError {
	return New(CodeDisposed, fmt.Sprintf("%s has been closed", resource))
}

// FetchFailed marks a rejected section fetch.
func FetchFailed(section string, cause error) *AppError {
	return &AppError{Code: CodeFetchFailed, Message: fmt.Sprintf("fetch for %s failed", section), Cause: cause}
}

// Timeout marks a section fetch that exceeded its time budget.
func Timeout(section string, budget fmt.Stringer) *AppError {
	return New(CodeTimeout, fmt.Sprintf("fetch for %s exceeded %s", section, budget))
}

// BackendFailure is what the simulated backend returns for injected faults.
func BackendFailure(collection string) *AppError {
	return New(CodeBackendFailure, fmt.Sprintf("simulated backend failure for %s", collection))
}

func ReportFailed(kind string, cause error) *AppError {
	return &AppError{Code: CodeReportFailed, Message: fmt.Sprintf("failed to build %s report", kind), Cause: cause}
}
