package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed domain error carrying a stable machine code and the HTTP
// status it should surface as. Services return these; the response layer
// renders them without switching on error types.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// With returns a copy of the error carrying a more specific message. The
// code and status of the sentinel are preserved so errors.As matching on
// Code keeps working.
func (e *Error) With(message string) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// New creates a fresh Error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches a domain code and message to an underlying cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Sentinels shared across services.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Scheduling and assessment-window sentinels.
var (
	ErrScheduleConflict = New("SCHEDULE_CONFLICT", http.StatusConflict, "schedule entry conflicts with an existing entry")
	ErrWindowClosed     = New("WINDOW_CLOSED", http.StatusForbidden, "assessment window is closed")
	ErrWindowNotOpen    = New("WINDOW_NOT_OPEN", http.StatusForbidden, "assessment window has not opened")
	ErrEntryImmutable   = New("ENTRY_IMMUTABLE", http.StatusConflict, "completed or scored entries cannot be deleted")
	ErrOutsideTerm      = New("OUTSIDE_TERM", http.StatusBadRequest, "date falls outside the term boundaries")
)

// FromError normalises any error into an *Error, defaulting unknown causes
// to an internal error so nothing leaks raw messages to clients.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}
