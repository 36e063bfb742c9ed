package robot

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Mode is the operating mode of the robot.
type Mode string

const (
	ModeDisabled   Mode = "disabled"
	ModeAutonomous Mode = "autonomous"
	ModeTeleop     Mode = "teleop"
	ModeTest       Mode = "test"
)

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeDisabled, ModeAutonomous, ModeTeleop, ModeTest}
}

// ParseMode converts a mode name to a Mode.
func ParseMode(name string) (Mode, error) {
	for _, mode := range Modes() {
		if string(mode) == name {
			return mode, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

const (
	eventDisable          = "disable"
	eventEnableAutonomous = "enable_autonomous"
	eventEnableTeleop     = "enable_teleop"
	eventEnableTest       = "enable_test"
)

var enableEvents = map[Mode]string{ //nolint:gochecknoglobals
	ModeAutonomous: eventEnableAutonomous,
	ModeTeleop:     eventEnableTeleop,
	ModeTest:       eventEnableTest,
}

// newModeMachine builds the mode FSM. Every enabled mode is entered from and
// left to disabled, so components see exactly one OnEnabled/OnDisabled pair
// per enabled period.
func (r *Robot) newModeMachine() *fsm.FSM {
	enabled := []string{string(ModeAutonomous), string(ModeTeleop), string(ModeTest)}

	return fsm.NewFSM(
		string(ModeDisabled),
		fsm.Events{
			{Name: eventEnableAutonomous, Src: []string{string(ModeDisabled)}, Dst: string(ModeAutonomous)},
			{Name: eventEnableTeleop, Src: []string{string(ModeDisabled)}, Dst: string(ModeTeleop)},
			{Name: eventEnableTest, Src: []string{string(ModeDisabled)}, Dst: string(ModeTest)},
			{Name: eventDisable, Src: enabled, Dst: string(ModeDisabled)},
		},
		fsm.Callbacks{
			"enter_" + string(ModeAutonomous): func(_ context.Context, _ *fsm.Event) {
				r.enableComponents()
				r.runInit(ModeAutonomous)
				r.startAutonomous()
			},
			"leave_" + string(ModeAutonomous): func(_ context.Context, _ *fsm.Event) {
				r.stopAutonomous()
				r.disableComponents()
			},
			"enter_" + string(ModeTeleop): func(_ context.Context, _ *fsm.Event) {
				r.enableComponents()
				r.runInit(ModeTeleop)
			},
			"leave_" + string(ModeTeleop): func(_ context.Context, _ *fsm.Event) {
				r.disableComponents()
			},
			"enter_" + string(ModeTest): func(_ context.Context, _ *fsm.Event) {
				r.runInit(ModeTest)
			},
			"enter_" + string(ModeDisabled): func(_ context.Context, _ *fsm.Event) {
				r.runInit(ModeDisabled)
			},
			"enter_state": func(_ context.Context, e *fsm.Event) {
				r.modeEntered(Mode(e.Src), Mode(e.Dst))
			},
		},
	)
}

// transition moves the mode machine to target, passing through disabled.
func (r *Robot) transition(ctx context.Context, target Mode) error {
	current := r.Mode()
	if current == target {
		return nil
	}

	if current != ModeDisabled {
		if err := r.modes.Event(ctx, eventDisable); err != nil {
			return fmt.Errorf("leaving %s: %w", current, err)
		}
	}

	if target == ModeDisabled {
		return nil
	}

	if err := r.modes.Event(ctx, enableEvents[target]); err != nil {
		return fmt.Errorf("entering %s: %w", target, err)
	}

	return nil
}
