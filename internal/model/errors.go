package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to another owner.
	ErrNotFound = errors.New("not found")
	// ErrHasDependents is returned when a delete is blocked by referencing rows.
	ErrHasDependents = errors.New("cannot delete: has associated records")
	// ErrAlreadyLinked is returned when a transaction is already one side of a transfer.
	ErrAlreadyLinked = errors.New("transaction already linked to a transfer")
)

// ValidationError describes invalid caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid returns a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
