package salesforce

import "github.com/pkg/errors"

var (
	// ErrNotConfigured is returned when no Salesforce credentials are set.
	ErrNotConfigured = errors.New("salesforce integration is not configured")

	// ErrCaseNotFound is returned when no case matches the given number.
	ErrCaseNotFound = errors.New("case not found")
)
