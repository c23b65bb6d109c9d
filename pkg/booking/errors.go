package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors for the booking package.
var (
	// ErrParse marks a date or time the normalizer could not understand.
	ErrParse = errors.New("booking: invalid date or time")

	// ErrMissingName is returned when no customer name is available.
	ErrMissingName = errors.New("booking: customer name required")

	// ErrNoStore is returned when a Service has no record store.
	ErrNoStore = errors.New("booking: no record store configured")
)

// ParseError describes which input failed to parse.
type ParseError struct {
	// Field is "date" or "time".
	Field string

	// Value is the raw input.
	Value string

	// Reason is a short description of the problem.
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("booking: cannot parse %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrParse.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// PanicError wraps a value recovered from a panic during a booking.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("booking: recovered panic: %v", e.Value)
}
