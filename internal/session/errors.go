package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition matches every *InvalidTransitionError via errors.Is.
var ErrInvalidTransition = errors.New("invalid session transition")

// ErrClosed is returned by operations on a session that was torn down.
var ErrClosed = errors.New("session closed")

// InvalidTransitionError reports an operation that is not allowed in the
// session's current state. The session is left unchanged.
type InvalidTransitionError struct {
	Op     string
	Status Status
	ItemID string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("%s on item %q (%s): %s", e.Op, e.ItemID, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", e.Op, e.Status, e.Reason)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
