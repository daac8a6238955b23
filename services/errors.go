package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrGoalNotFound       = fmt.Errorf("goal %w", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("task %w", ErrNotFound)
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrValidation         = errors.New("validation error")
	ErrStorage            = errors.New("storage failure")
)

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ValidationMessage returns the user-facing message of a validation failure,
// or "" when err is not one.
func ValidationMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return ""
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
