package sim

import (
	"time"

	"github.com/amp-labs/magicbot/statemachine"
)

const (
	shooterSpinUp = 300 * time.Millisecond
	shooterFeed   = 200 * time.Millisecond

	// WheelSpeed is the flywheel speed in rpm while spinning.
	WheelSpeed = 4000.0
)

// Shooter spins a flywheel and feeds one ball per firing cycle. A cycle that
// reached the feeder always completes, even if Fire stops being called.
type Shooter struct {
	machine *statemachine.Machine

	spinRequested bool
	wheel         float64
	shots         int
}

// NewShooter creates a shooter.
func NewShooter(opts ...statemachine.Option) (*Shooter, error) {
	s := &Shooter{}

	machine, err := statemachine.NewBuilder("shooter").
		Default("idle", s.idle).
		Timed("spin_up", shooterSpinUp, s.spinUp, statemachine.First(), statemachine.Next("feed")).
		Timed("feed", shooterFeed, s.feed, statemachine.MustFinish()).
		Build(opts...)
	if err != nil {
		return nil, err
	}

	s.machine = machine

	return s, nil
}

// Name implements robot.Named.
func (s *Shooter) Name() string {
	return s.machine.Name()
}

// SpinUp keeps the flywheel at speed for this tick without firing.
func (s *Shooter) SpinUp() {
	s.spinRequested = true
}

// Fire runs the firing cycle for this tick.
func (s *Shooter) Fire() error {
	return s.machine.Engage()
}

// Shots returns the number of balls fed so far.
func (s *Shooter) Shots() int {
	return s.shots
}

// WheelSpeed returns the current flywheel speed in rpm.
func (s *Shooter) WheelSpeed() float64 {
	return s.wheel
}

// State returns the shooter state.
func (s *Shooter) State() string {
	return s.machine.CurrentState()
}

func (s *Shooter) OnEnabled() {
	s.machine.OnEnabled()
}

func (s *Shooter) OnDisabled() {
	s.machine.OnDisabled()
	s.spinRequested = false
	s.wheel = 0
}

func (s *Shooter) Execute() error {
	err := s.machine.Execute()
	s.spinRequested = false

	return err
}

func (s *Shooter) idle(time.Duration, bool) error {
	if s.spinRequested {
		s.wheel = WheelSpeed
	} else {
		s.wheel = 0
	}

	return nil
}

func (s *Shooter) spinUp(elapsed time.Duration, _ bool) error {
	s.wheel = WheelSpeed * min(1, elapsed.Seconds()/shooterSpinUp.Seconds())

	return nil
}

func (s *Shooter) feed(_ time.Duration, initialCall bool) error {
	s.wheel = WheelSpeed

	if initialCall {
		s.shots++
	}

	return nil
}
