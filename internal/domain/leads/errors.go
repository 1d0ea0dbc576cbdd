package leads

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the store, the token codec and the flows.
// Callers match with errors.Is; the HTTP layer maps them to status codes.
var (
	ErrValidation     = errors.New("validation failed")
	ErrTokenInvalid   = errors.New("download token is invalid or expired")
	ErrLeadNotFound   = errors.New("lead not found")
	ErrPersistence    = errors.New("lead storage failure")
	ErrStorageCorrupt = errors.New("lead storage is corrupt")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError is shorthand for building a field-level validation failure.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
