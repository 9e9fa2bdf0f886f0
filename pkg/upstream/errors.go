package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBodyTooLarge is returned when an upstream body exceeds Config.MaxBodyBytes.
var ErrBodyTooLarge = errors.New("upstream body exceeds limit")

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx upstream responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx upstream responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassStatus represents any other non-2xx status (1xx, 3xx that were not followed).
	ErrorClassStatus ErrorClass = "status"

	// ErrorClassNetwork represents network, DNS, timeout and cancellation errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassBody represents failures while reading the response body.
	ErrorClassBody ErrorClass = "body"
)

// FetchError is returned for every failed upstream fetch.
// StatusCode is 0 when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	ErrorClass ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s error (status %d) for %s", e.ErrorClass, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("upstream %s error for %s: %v", e.ErrorClass, e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx status code to an ErrorClass.
func classifyStatus(code int) ErrorClass {
	switch {
	case code >= 400 && code < 500:
		return ErrorClassClient
	case code >= 500:
		return ErrorClassServer
	default:
		return ErrorClassStatus
	}
}

// statusError builds the FetchError for a non-2xx response.
func statusError(url string, code int) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: code,
		ErrorClass: classifyStatus(code),
		Err:        errors.New(http.StatusText(code)),
	}
}
