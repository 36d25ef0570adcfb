package cipher

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("invalid message")

// ValidationError reports a message rejected before anything was sent to the device.
type ValidationError struct {
	Op     Operation
	Length int
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(op Operation, length int, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Length: length, Reason: fmt.Sprintf(format, args...)}
}
