package models

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel for out-of-range or mistyped user input.
// Validation failures are recovered locally (default substituted, field
// flagged) and never halt the session.
var ErrValidation = errors.New("invalid input")

// ValidationError describes one rejected field value
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s (got %v)", e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
