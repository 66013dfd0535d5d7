// Package result holds the uniform outcome type returned by domain operations.
package result

import "net/http"

// internalErrorMessage fills 5xx failures built without a message, including the zero value.
const internalErrorMessage = "Internal server error"

// Result is either a success carrying a value or a failure carrying a message.
// The zero value is a failure with status 500.
type Result[T any] struct {
	ok     bool
	status int
	value  T
	msg    string
	cause  error
}

// Envelope is the flat shape handed to callers at the boundary.
type Envelope[T any] struct {
	StatusCode   int    `json:"statusCode"`
	Data         *T     `json:"data,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Ok builds a success result. Status must be 2xx.
func Ok[T any](status int, value T) Result[T] {
	if status < 200 || status > 299 {
		status = http.StatusOK
	}
	return Result[T]{ok: true, status: status, value: value}
}

// Err builds a failure result with a human-readable message.
func Err[T any](status int, msg string) Result[T] {
	if status < 400 {
		status = http.StatusBadRequest
	}
	return Result[T]{status: status, msg: msg}
}

// Internal builds a 500 failure and keeps the underlying error for the caller to log.
func Internal[T any](msg string, cause error) Result[T] {
	return Result[T]{status: http.StatusInternalServerError, msg: msg, cause: cause}
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool { return r.ok }

// StatusCode returns the status of the result.
func (r Result[T]) StatusCode() int {
	if r.status == 0 {
		return http.StatusInternalServerError
	}
	return r.status
}

// Value returns the success value and true, or the zero value and false on failure.
func (r Result[T]) Value() (T, bool) {
	if !r.ok {
		var zero T
		return zero, false
	}
	return r.value, true
}

// ErrorMessage returns the failure message, empty on success.
func (r Result[T]) ErrorMessage() string {
	if r.ok {
		return ""
	}
	return r.msg
}

// Cause returns the collaborator error behind an internal failure, if any.
func (r Result[T]) Cause() error { return r.cause }

// Envelope flattens the result.
func (r Result[T]) Envelope() Envelope[T] {
	if r.ok {
		v := r.value
		return Envelope[T]{StatusCode: r.StatusCode(), Data: &v}
	}
	msg := r.msg
	if msg == "" {
		msg = internalErrorMessage
		if status := r.StatusCode(); status < http.StatusInternalServerError {
			msg = http.StatusText(status)
		}
	}
	return Envelope[T]{StatusCode: r.StatusCode(), ErrorMessage: msg}
}
