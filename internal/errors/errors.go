// Package errors provides the single error shape surfaced by the mini-app core.
//
// Every failure a caller can observe (transport, non-success API response,
// client-side validation) is an *Error carrying a Code and a human-readable
// Message that is safe to show to the user as is.
//
// Usage:
//
//	tobacco, err := client.Tobaccos.Create(ctx, req)
//	if errors.Is(err, errors.ErrConflict) {
//	    // already in the collection
//	}
//
//	var apiErr *errors.Error
//	if errors.As(err, &apiErr) {
//	    show(apiErr.Message)
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the client.
const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNetwork      Code = "NETWORK"
	CodeServer       Code = "SERVER"
	CodeInternal     Code = "INTERNAL"
)

// FromStatus maps an HTTP status of a failed response to a Code.
//
// The backend reports duplicates ("already in the collection") as 400, so a
// plain 400 is a validation failure rather than a conflict.
func FromStatus(status int) Code {
	switch {
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return CodeValidation
	case status >= 500:
		return CodeServer
	default:
		return CodeInternal
	}
}

// Error is the client error with a code, user-facing message and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface. Only the message is returned so the
// value can be shown to the user directly; the cause stays reachable through Unwrap.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Cause returns the wrapped error, if any, formatted for logs.
func (e *Error) Cause() string {
	if e.cause == nil {
		return ""
	}
	return e.cause.Error()
}

// WithDetails returns a copy of the error with details attached.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Status: e.Status, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Status: e.Status, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrNetwork      = &Error{Code: CodeNetwork, Message: "network error"}
	ErrServer       = &Error{Code: CodeServer, Message: "server error"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Network creates a transport failure error.
func Network(msg string, cause error) *Error {
	return &Error{Code: CodeNetwork, Message: msg, cause: cause}
}

// Response creates an error for a non-success API response.
func Response(status int, msg string) *Error {
	return &Error{Code: FromStatus(status), Status: status, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// MessageOf returns the user-facing message of err, falling back to err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
