package status

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound = errors.New("event: event not found")
	ErrUserNotFound  = errors.New("user: user not found")
)

// ValidationError reports an input that violates a model invariant.
// The request layer translates it into a field-level rejection.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
