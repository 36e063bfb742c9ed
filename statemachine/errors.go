package statemachine

import (
	"errors"
	"fmt"
)

// Configuration errors. These only come out of registry construction.
var (
	// ErrInvalidDuration indicates that a timed state has a non-positive duration.
	ErrInvalidDuration = errors.New("timed state must have a positive duration")
	// ErrNoFirstState indicates that no state was marked as the first state.
	ErrNoFirstState = errors.New("starting state not defined")
	// ErrMultipleFirstStates indicates that more than one state was marked as first.
	ErrMultipleFirstStates = errors.New("multiple states were specified as the first state")
	// ErrMultipleDefaultStates indicates that more than one default state was declared.
	ErrMultipleDefaultStates = errors.New("multiple states were specified as the default state")
	// ErrDuplicateState indicates that two states share a name.
	ErrDuplicateState = errors.New("duplicate state name")
	// ErrDefaultStateFirst indicates that the default state was marked first.
	ErrDefaultStateFirst = errors.New("default state cannot be the first state")
	// ErrStateNameRequired indicates that a state was declared without a name.
	ErrStateNameRequired = errors.New("state name is required")
)

// Runtime errors.
var (
	// ErrUnknownState indicates a transition to a name absent from the registry.
	ErrUnknownState = errors.New("invalid state specified")
)

// Table errors.
var (
	// ErrUnknownKind indicates an unrecognized state kind in a table.
	ErrUnknownKind = errors.New("unknown state kind")
	// ErrTableNameRequired indicates that a state table has no name.
	ErrTableNameRequired = errors.New("table name is required")
	// ErrMissingBody indicates that a table state has no body bound to it.
	ErrMissingBody = errors.New("no body bound to state")
	// ErrUnknownBody indicates a body bound to a name the table does not declare.
	ErrUnknownBody = errors.New("body bound to undeclared state")
)

// StateError wraps an error with state context.
type StateError struct {
	State string
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// WrapStateError wraps an error with state context.
func WrapStateError(state string, err error) error {
	if err == nil {
		return nil
	}

	return &StateError{
		State: state,
		Err:   err,
	}
}
