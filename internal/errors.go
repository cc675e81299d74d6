package internal

import (
	"errors"
	"net/http"
)

// ErrDecode is returned by Context.Bind when the request body cannot be
// decoded into the target. It is answered with 501 and a generic message;
// no decoded field is applied.
var ErrDecode = errors.New("internal: decode request body")

// decodeMessage is the user-facing body sent for ErrDecode.
const decodeMessage = "Something gone wrong"

// HTTPError is an error with a status code and a user-facing message.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// NewHTTPError creates a new HTTPError with the given status code and message.
// An empty message is replaced by the status text.
func NewHTTPError(code int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// WithCause attaches the underlying error.
func (e *HTTPError) WithCause(err error) *HTTPError {
	e.Err = err
	return e
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

func ErrInternal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message)
}

// AsHTTPError extracts the HTTPError from an error chain if present.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// StatusOf maps an error to the status code the default error handler
// answers with: HTTPError carries its own code, ErrDecode is 501 and
// everything else is 500.
func StatusOf(err error) int {
	if httpErr := AsHTTPError(err); httpErr != nil {
		return httpErr.Code
	}
	if errors.Is(err, ErrDecode) {
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// messageOf returns the body the default error handler writes for err.
// Internal errors never leak their text.
func messageOf(err error) string {
	if httpErr := AsHTTPError(err); httpErr != nil {
		return httpErr.Message
	}
	if errors.Is(err, ErrDecode) {
		return decodeMessage
	}
	return http.StatusText(http.StatusInternalServerError)
}

// DefaultErrorHandler logs err and writes a plain text response with the
// status from StatusOf. Nothing is written if the response already started.
func DefaultErrorHandler(c Context, err error) {
	code := StatusOf(err)
	if code >= http.StatusInternalServerError {
		c.Logger().ErrorContext(c, "request failed", "error", err, "status", code)
	}
	if c.Written() {
		return
	}
	writeText(c.Response(), code, messageOf(err))
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
