package errors

import (
	"errors"
	"fmt"

	"github.com/polkiloo/orderflow/internal/domain/model"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrIllegalTransition  = errors.New("illegal state transition")
)

// TransitionError reports a command applied while the order was not in a
// legal state for it. The order is left unchanged.
type TransitionError struct {
	Command string
	Status  model.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal state transition: %s while %s", e.Command, e.Status)
}

// Unwrap makes TransitionError match ErrIllegalTransition via errors.Is.
func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// NewTransitionError builds TransitionError for a rejected command.
func NewTransitionError(command string, status model.Status) error {
	return &TransitionError{Command: command, Status: status}
}

// Validation wraps reason into ErrValidation chain.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
