package robot

import "errors"

var (
	// ErrUnknownMode is returned when a mode name does not match any Mode.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrAutonomousNameRequired is returned when an autonomous routine is added without a name.
	ErrAutonomousNameRequired = errors.New("autonomous mode name is required")

	// ErrDuplicateAutonomous is returned when two autonomous routines share a name.
	ErrDuplicateAutonomous = errors.New("duplicate autonomous mode")

	// ErrMultipleDefaultAutonomous is returned when more than one routine is marked as the default.
	ErrMultipleDefaultAutonomous = errors.New("more than one default autonomous mode")

	// ErrUnknownAutonomous is returned when selecting a routine that was never added.
	ErrUnknownAutonomous = errors.New("unknown autonomous mode")
)
