package upstream

import (
	"errors"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected ErrorClass
	}{
		{name: "not found", code: 404, expected: ErrorClassClient},
		{name: "too many requests", code: 429, expected: ErrorClassClient},
		{name: "internal server error", code: 500, expected: ErrorClassServer},
		{name: "bad gateway", code: 502, expected: ErrorClassServer},
		{name: "not modified", code: 304, expected: ErrorClassStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStatus(tt.code); got != tt.expected {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestFetchError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *FetchError
		expected string
	}{
		{
			name:     "status error",
			err:      statusError("https://zaiko.io/event/1", 503),
			expected: "upstream server error (status 503) for https://zaiko.io/event/1",
		},
		{
			name: "network error",
			err: &FetchError{
				URL:        "https://zaiko.io/event/1",
				ErrorClass: ErrorClassNetwork,
				Err:        errors.New("connection refused"),
			},
			expected: "upstream network error for https://zaiko.io/event/1: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &FetchError{ErrorClass: ErrorClassBody, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}

	var fetchErr *FetchError
	if !errors.As(error(err), &fetchErr) {
		t.Error("errors.As should match *FetchError")
	}
}
