// Package apperr defines the domain error taxonomy. Handlers map these to
// HTTP status codes at the boundary; anything else surfaces as a 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error carrying its HTTP mapping.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`

	// RetryAfter is the advisory Retry-After header value in seconds,
	// set only on rate-limit errors.
	RetryAfter int `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validation is malformed or missing input (400).
func Validation(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "VALIDATION", Message: fmt.Sprintf(format, args...)}
}

// Auth is a missing/invalid/expired token or bad credentials (401).
func Auth(format string, args ...any) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "AUTH", Message: fmt.Sprintf(format, args...)}
}

// Authz is a role or jurisdiction mismatch (403).
func Authz(format string, args ...any) *Error {
	return &Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: fmt.Sprintf(format, args...)}
}

// NotFound is a missing resource, including jurisdiction-scoped lookups that
// deliberately hide out-of-scope resources (404).
func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf(format, args...)}
}

// RateLimited is too many attempts (429). retryAfterSeconds is how much of
// the limiter window remains.
func RateLimited(retryAfterSeconds int) *Error {
	return &Error{
		Status:     http.StatusTooManyRequests,
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("too many attempts, retry after %d seconds", retryAfterSeconds),
		RetryAfter: retryAfterSeconds,
	}
}

// From extracts an *Error from err's chain, or nil.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
