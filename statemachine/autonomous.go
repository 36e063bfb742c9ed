package statemachine

// Autonomous runs a machine as a one-shot autonomous routine: enabling it
// starts one run, which is engaged on every tick until the machine reports
// it is no longer executing. Without this latch an engaged machine would
// wrap around to its first state and repeat forever.
type Autonomous struct {
	machine  *Machine
	periodic func() error
	engaged  bool
}

// AutonomousOption configures an Autonomous.
type AutonomousOption func(*Autonomous)

// WithPeriodicHook runs fn after the machine on every tick of the routine.
func WithPeriodicHook(fn func() error) AutonomousOption {
	return func(a *Autonomous) {
		a.periodic = fn
	}
}

// NewAutonomous wraps machine as an autonomous routine.
func NewAutonomous(machine *Machine, opts ...AutonomousOption) *Autonomous {
	a := &Autonomous{
		machine: machine,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Machine returns the wrapped machine.
func (a *Autonomous) Machine() *Machine {
	return a.machine
}

// Running reports whether the routine is still being driven.
func (a *Autonomous) Running() bool {
	return a.engaged
}

// OnEnabled arms the routine for one run. Autonomous routines always log
// their state transitions.
func (a *Autonomous) OnEnabled() {
	a.machine.OnEnabled()
	a.engaged = true
	a.machine.SetVerbose(true)
}

// Periodic is called once per control loop tick while autonomous mode is enabled.
func (a *Autonomous) Periodic() error {
	if !a.engaged {
		return nil
	}

	err := a.machine.Engage()
	if err != nil {
		return err
	}

	err = a.machine.Execute()
	if err != nil {
		a.engaged = a.machine.IsExecuting()

		return err
	}

	if a.periodic != nil {
		err = a.periodic()
	}

	a.engaged = a.machine.IsExecuting()

	return err
}

// OnDisabled stops the routine.
func (a *Autonomous) OnDisabled() {
	a.machine.OnDisabled()
	a.engaged = false
}
