package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition   = errors.New("invalid transition: from, to, or event cannot be nil")
	ErrDuplicateTransition = errors.New("transition already declared for state/event pair")
)

// ErrNoTransition indicates no transition exists for a state/event pair.
type ErrNoTransition struct {
	StateName string
	EventName string
}

func (e *ErrNoTransition) Error() string {
	return fmt.Sprintf("no transition from state %q for event %q", e.StateName, e.EventName)
}

func NewErrNoTransition(stateName, eventName string) *ErrNoTransition {
	return &ErrNoTransition{StateName: stateName, EventName: eventName}
}

func IsNoTransitionError(err error) bool {
	var e *ErrNoTransition
	return errors.As(err, &e)
}
