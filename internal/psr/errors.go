package psr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no request matches the given id.
	ErrNotFound = errors.New("PSR not found")

	// ErrAccessDenied is returned when the actor may not see or touch the
	// request, e.g. a requestor reaching for someone else's record.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition is returned when a lifecycle event does not apply
	// to the request's current status, including the case where a concurrent
	// writer moved the status between read and write.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned when deleting a request that is no longer
	// a draft.
	ErrInvalidStatus = errors.New("can only delete draft PSRs")
)

// ValidationError reports a rejected input field.
// A failed validation performs no mutation.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
