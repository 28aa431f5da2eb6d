package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that the referenced subject or document is absent.
	ErrNotFound = errors.New("newsalt: not found")
	// ErrProvider signals an identity provider failure.
	ErrProvider = errors.New("newsalt: identity provider failure")
)

// ValidationError reports malformed input, naming the offending field.
// It is always raised before any mutating call is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError for the given field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
