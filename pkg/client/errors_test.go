package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "transport error should retry",
			err:      &APIError{StatusCode: 500, ErrorClass: ErrorClassTransport, Message: "Internal Server Error"},
			expected: true,
		},
		{
			name:     "application error should retry",
			err:      &APIError{StatusCode: 200, Code: 409, ErrorClass: ErrorClassApplication, Message: "Missing parameter"},
			expected: true,
		},
		{
			name:     "wrapped api error should retry",
			err:      fmt.Errorf("fetch page: %w", &APIError{ErrorClass: ErrorClassTransport, Message: "request failed"}),
			expected: true,
		},
		{
			name:     "plain error should not retry",
			err:      errors.New("something else"),
			expected: false,
		},
		{
			name:     "cancellation should not retry",
			err:      fmt.Errorf("%w: context canceled", ErrCancelled),
			expected: false,
		},
		{
			name:     "nil should not retry",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsRetryable(tt.err)
			if result != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "transport error with wrapped error",
			apiError: &APIError{
				ErrorClass: ErrorClassTransport,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			expected: "marvel transport error (status 0): request failed: connection refused",
		},
		{
			name: "transport error from status line",
			apiError: &APIError{
				StatusCode: 500,
				ErrorClass: ErrorClassTransport,
				Message:    "500 Internal Server Error",
			},
			expected: "marvel transport error (status 500): 500 Internal Server Error",
		},
		{
			name: "application error reports body code",
			apiError: &APIError{
				StatusCode: 200,
				Code:       409,
				ErrorClass: ErrorClassApplication,
				Message:    "You must pass a hash",
			},
			expected: "marvel application error (code 409): You must pass a hash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.apiError.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	apiError := &APIError{
		StatusCode: 500,
		ErrorClass: ErrorClassTransport,
		Message:    "server error",
		Err:        wrappedErr,
	}

	unwrapped := apiError.Unwrap()
	if unwrapped != wrappedErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, wrappedErr)
	}

	// Test errors.Is
	if !errors.Is(apiError, wrappedErr) {
		t.Error("errors.Is should work with wrapped error")
	}
}

func TestAPIError_UnwrapNil(t *testing.T) {
	apiError := &APIError{
		StatusCode: 404,
		ErrorClass: ErrorClassTransport,
		Message:    "not found",
		Err:        nil,
	}

	unwrapped := apiError.Unwrap()
	if unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{
			name:     "transport",
			err:      &APIError{ErrorClass: ErrorClassTransport},
			expected: ErrorClassTransport,
		},
		{
			name:     "application",
			err:      &APIError{ErrorClass: ErrorClassApplication},
			expected: ErrorClassApplication,
		},
		{
			name:     "foreign error has no class",
			err:      errors.New("boom"),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expected {
				t.Errorf("Classify() = %q, want %q", got, tt.expected)
			}
		})
	}
}
