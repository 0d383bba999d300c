// Package apperr holds the error taxonomy shared by every use case.
// Callers match with errors.Is; messages carry the detail.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
)

// NotFound reports a missing record, e.g. NotFound("cycle", id).
func NotFound(what, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
}

// Invalid reports malformed input. Nothing has been written when it is returned.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// State reports an operation attempted from a state that forbids it.
func State(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Message strips the sentinel prefix so HTTP bodies read naturally.
func Message(err error) string {
	msg := err.Error()
	for _, s := range []error{ErrNotFound, ErrValidation, ErrInvalidState, ErrForbidden} {
		prefix := s.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
