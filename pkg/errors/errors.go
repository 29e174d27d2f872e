package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Kind       Kind   `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Cause      error  `json:"-"`
	Stack      string `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the error that triggered this one
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Kind:       kindForStatus(statusCode),
		Code:       code,
		Message:    message,
		Stack:      string(debug.Stack()),
	}
}

// FromKind creates an error reported with the status of the given kind
func FromKind(kind Kind, message string, cause error) *AppError {
	return &AppError{
		StatusCode: kind.HTTPStatus(),
		Kind:       kind,
		Code:       strings.ToUpper(kind.String()),
		Message:    message,
		Cause:      cause,
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(code string, message string) *AppError {
	return NewError(http.StatusNotFound, code, message)
}

// NewTooManyRequestsError creates a 429 Too Many Requests error
func NewTooManyRequestsError(code string, message string) *AppError {
	return NewError(http.StatusTooManyRequests, code, message)
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return KindValidation
	case http.StatusConflict:
		return KindUniqueViolation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindInternal
	}
}
