package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced account or signal does not exist
var ErrNotFound = errors.New("not found")

// ValidationError reports a request rejected before any write happened
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
