package zaiko

import (
	"errors"
	"fmt"
)

// Request validation failures. Their text is returned to the client as is.
var (
	ErrURLNotAllowed     = errors.New("url not allowed")
	ErrInvalidEventID    = errors.New("invalid event id")
	ErrInvalidCanvasSize = errors.New("invalid canvas size")
)

// ValidationError reports a request parameter that was rejected before any
// upstream call was made.
type ValidationError struct {
	// Field is the rejected parameter (e.g., "u", "event_id")
	Field string

	// Value is the rejected input
	Value string

	// Err is one of the sentinel errors above
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Detail describes the failure for logs.
func (e *ValidationError) Detail() string {
	return fmt.Sprintf("%s=%q: %v", e.Field, e.Value, e.Err)
}
