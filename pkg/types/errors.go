package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies venue API failures. The core treats every kind as
// "this call failed" and only logs the kind; rate limits additionally carry
// a Retry-After hint honored inside the client's retry budget.
type ErrorKind string

const (
	ErrKindAuth       ErrorKind = "auth"
	ErrKindRateLimit  ErrorKind = "rate_limit"
	ErrKindValidation ErrorKind = "validation"
	ErrKindNotFound   ErrorKind = "not_found"
	ErrKindServer     ErrorKind = "server"
	ErrKindTransport  ErrorKind = "transport"
)

// APIError is a classified failure from the market client boundary.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%s): %s", e.Kind, e.Message)
}

// KindOf extracts the error kind from err, or ErrKindTransport when err is
// not an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ErrKindTransport
}

// IsFatalSession reports whether the failure should end the trading session
// (authentication errors cannot be recovered within a run).
func IsFatalSession(err error) bool {
	return KindOf(err) == ErrKindAuth
}
