// Package validator provides validation and auto-fixing for state tables.
package validator

import (
	"errors"
	"fmt"

	"github.com/amp-labs/magicbot/statemachine"
	"github.com/tiendc/go-deepcopy"
)

var (
	// ErrStateNotFound is returned when a fix targets a state that doesn't exist.
	ErrStateNotFound = errors.New("state not found")
	// ErrStateAlreadyExists is returned when attempting to rename to an existing state name.
	ErrStateAlreadyExists = errors.New("state already exists")
	// ErrNotTimed is returned when a fix needs a timed state.
	ErrNotTimed = errors.New("state is not timed")
)

// Fix represents an automatic fix for a validation issue.
type Fix struct {
	Description string
	Apply       func(table *statemachine.Table) error
}

// ApplyFixes applies fixes to a deep copy of table and returns the copy.
// The input table is never modified.
func ApplyFixes(table *statemachine.Table, fixes []*Fix) (*statemachine.Table, error) {
	var fixed statemachine.Table

	err := deepcopy.Copy(&fixed, table)
	if err != nil {
		return nil, fmt.Errorf("failed to copy table: %w", err)
	}

	for _, fix := range fixes {
		if err := fix.Apply(&fixed); err != nil {
			return nil, fmt.Errorf("%s: %w", fix.Description, err)
		}
	}

	return &fixed, nil
}

// MarkFirst creates a fix that marks a state as the first state.
func MarkFirst(stateName string) *Fix {
	return &Fix{
		Description: fmt.Sprintf("Mark state '%s' as first", stateName),
		Apply: func(table *statemachine.Table) error {
			return withState(table, stateName, func(state *statemachine.StateConfig) error {
				state.First = true

				return nil
			})
		},
	}
}

// UnmarkFirst creates a fix that clears the first flag of a state.
func UnmarkFirst(stateName string) *Fix {
	return &Fix{
		Description: fmt.Sprintf("Unmark state '%s' as first", stateName),
		Apply: func(table *statemachine.Table) error {
			return withState(table, stateName, func(state *statemachine.StateConfig) error {
				state.First = false

				return nil
			})
		},
	}
}

// RetargetNext creates a fix that points a timed state at a different next state.
func RetargetNext(stateName, next string) *Fix {
	return &Fix{
		Description: fmt.Sprintf("Change next state of '%s' to '%s'", stateName, next),
		Apply: func(table *statemachine.Table) error {
			return withState(table, stateName, func(state *statemachine.StateConfig) error {
				if state.Kind != statemachine.KindTimed {
					return fmt.Errorf("%w: '%s'", ErrNotTimed, stateName)
				}

				state.Next = next

				return nil
			})
		},
	}
}

// ClearIgnoredFields creates a fix that drops fields the state's kind does not use.
func ClearIgnoredFields(stateName string) *Fix {
	return &Fix{
		Description: fmt.Sprintf("Remove unused fields from state '%s'", stateName),
		Apply: func(table *statemachine.Table) error {
			return withState(table, stateName, func(state *statemachine.StateConfig) error {
				if state.Kind == statemachine.KindTimed {
					return nil
				}

				state.Duration = 0
				state.Next = ""

				if state.Kind == statemachine.KindDefault {
					state.MustFinish = false
				}

				return nil
			})
		},
	}
}

// RenameState creates a fix that renames a state and every next reference to it.
func RenameState(oldName, newName string) *Fix {
	return &Fix{
		Description: fmt.Sprintf("Rename state from '%s' to '%s'", oldName, newName),
		Apply: func(table *statemachine.Table) error {
			for _, state := range table.States {
				if state.Name == newName {
					return fmt.Errorf("%w: '%s'", ErrStateAlreadyExists, newName)
				}
			}

			err := withState(table, oldName, func(state *statemachine.StateConfig) error {
				state.Name = newName

				return nil
			})
			if err != nil {
				return err
			}

			for i := range table.States {
				if table.States[i].Next == oldName {
					table.States[i].Next = newName
				}
			}

			return nil
		},
	}
}

func withState(table *statemachine.Table, name string, fn func(*statemachine.StateConfig) error) error {
	for i := range table.States {
		if table.States[i].Name == name {
			return fn(&table.States[i])
		}
	}

	return fmt.Errorf("%w: '%s'", ErrStateNotFound, name)
}
