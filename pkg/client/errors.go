package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client and the pagination engine.
var (
	// ErrRetryExhausted is returned when the bounded retry budget is spent.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrCancelled is returned when the context ends during a fetch, a
	// throttle wait or a retry wait.
	ErrCancelled = errors.New("fetch cancelled")
)

// APIError represents a gateway error with its classification.
type APIError struct {
	// StatusCode is the HTTP status, zero when the request never completed.
	StatusCode int

	// Code is the body-level application code, zero for transport errors.
	Code int

	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("marvel %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	case e.ErrorClass == ErrorClassApplication:
		return fmt.Sprintf("marvel %s error (code %d): %s",
			e.ErrorClass, e.Code, e.Message)
	default:
		return fmt.Sprintf("marvel %s error (status %d): %s",
			e.ErrorClass, e.StatusCode, e.Message)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the pagination engine should retry the request
// in place. Transport and application errors both are; the same request is
// re-issued with an unchanged offset.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.ErrorClass {
	case ErrorClassTransport:
		// Network failures and non-200 statuses are assumed transient.
		return true
	case ErrorClassApplication:
		// Body-level failures are retried with the identical request.
		return true
	default:
		return false
	}
}

// Classify returns the error class of err, or an empty class for errors that
// did not originate from the gateway.
func Classify(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ""
}
