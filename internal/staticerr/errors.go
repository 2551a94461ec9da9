package staticerr

import (
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("Trade order not found")
	ErrValidationFailed = errors.New("Validation failed")
)

// ValidationError carries every business-rule violation found for one order.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages []string) *ValidationError {
	return &ValidationError{Messages: append([]string(nil), messages...)}
}

func (e *ValidationError) Error() string {
	return ErrValidationFailed.Error() + ": " + strings.Join(e.Messages, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
