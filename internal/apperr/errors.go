package apperr

import (
	"errors"
	"net/http"
)

// Error is a structured application error. It is immutable once constructed;
// WithCause returns a copy.
type Error struct {
	status  int
	name    string
	message string
	cause   error
}

// New creates a structured error for status with the given client-facing message.
// The symbolic name is the standard status text (for example "Unauthorized").
// A status outside 400-599 is not an error status and becomes 500.
func New(status int, message string) *Error {
	if !IsErrorStatus(status) {
		status = http.StatusInternalServerError
	}
	name := http.StatusText(status)
	if name == "" {
		name = "Error"
	}
	return &Error{status: status, name: name, message: message}
}

// IsErrorStatus reports whether code is a client or server error status.
func IsErrorStatus(code int) bool {
	return code >= 400 && code <= 599
}

// Error implements the error interface. The cause is deliberately not included so
// that the text is always safe to show to clients.
func (e *Error) Error() string {
	return e.message
}

// StatusCode returns the HTTP status code the error maps to.
func (e *Error) StatusCode() int {
	return e.status
}

// Name returns the symbolic name of the error.
func (e *Error) Name() string {
	return e.name
}

// Message returns the client-facing message.
func (e *Error) Message() string {
	return e.message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of e that wraps cause. The cause is available to logs
// via errors.Unwrap but never reaches the response body.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// BadRequest returns a 400 error.
func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }

// Unauthorized returns a 401 error.
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }

// Forbidden returns a 403 error.
func Forbidden(message string) *Error { return New(http.StatusForbidden, message) }

// NotFound returns a 404 error.
func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

// MethodNotAllowed returns a 405 error.
func MethodNotAllowed(message string) *Error { return New(http.StatusMethodNotAllowed, message) }

// PayloadTooLarge returns a 413 error.
func PayloadTooLarge(message string) *Error { return New(http.StatusRequestEntityTooLarge, message) }

// InternalServerError returns a 500 error.
func InternalServerError(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// ServiceUnavailable returns a 503 error.
func ServiceUnavailable(message string) *Error {
	return New(http.StatusServiceUnavailable, message)
}

// As reports whether err is, or wraps, a structured error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsStructured reports whether err is, or wraps, a structured error.
func IsStructured(err error) bool {
	_, ok := As(err)
	return ok
}
