// Package robot drives components and autonomous routines from a single
// fixed-period control loop.
package robot

import "fmt"

// Component is anything the loop executes once per tick while the robot is
// enabled. statemachine.Machine satisfies it.
type Component interface {
	OnEnabled()
	OnDisabled()
	Execute() error
}

// Autonomous is a selectable autonomous routine. statemachine.Autonomous
// satisfies it.
type Autonomous interface {
	OnEnabled()
	OnDisabled()
	Periodic() error
}

// Named components report their name in logs and metrics.
type Named interface {
	Name() string
}

func componentName(c any) string {
	if named, ok := c.(Named); ok && named.Name() != "" {
		return named.Name()
	}

	return fmt.Sprintf("%T", c)
}

// noopAutonomous runs when autonomous mode is entered with nothing selected.
type noopAutonomous struct{}

func (noopAutonomous) OnEnabled()      {}
func (noopAutonomous) OnDisabled()     {}
func (noopAutonomous) Periodic() error { return nil }
