// Package sim wires simulated components and autonomous routines into a
// robot, for trying the framework without hardware.
package sim

import (
	"log/slog"
	"time"

	"github.com/amp-labs/magicbot/robot"
	"github.com/amp-labs/magicbot/statemachine"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

// Sim is a simulated robot.
type Sim struct {
	Robot      *robot.Robot
	Drivetrain *Drivetrain
	Shooter    *Shooter

	routines map[string]*statemachine.Autonomous
	speed    *atomic.Float64
	turn     *atomic.Float64
	trigger  *atomic.Bool
}

type settings struct {
	clock        statemachine.Clock
	logger       *slog.Logger
	tracer       trace.Tracer
	verbose      bool
	robotOptions []robot.Option
}

// Option configures a Sim.
type Option func(*settings)

// WithClock sets the clock of every state machine.
func WithClock(clock statemachine.Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithLogger sets the logger of the robot and its state machines.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithTracer sets the tracer of every state machine.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *settings) {
		s.tracer = tracer
	}
}

// WithVerbose logs component state transitions too. Autonomous routines
// always log theirs.
func WithVerbose(verbose bool) Option {
	return func(s *settings) {
		s.verbose = verbose
	}
}

// WithRobotOptions passes options through to robot.New.
func WithRobotOptions(opts ...robot.Option) Option {
	return func(s *settings) {
		s.robotOptions = append(s.robotOptions, opts...)
	}
}

// NewRobot builds a simulated robot ticking every period, with DriveSquare
// as the default autonomous routine. In teleop it follows the joystick set
// with SetJoystick.
func NewRobot(period time.Duration, opts ...Option) (*Sim, error) {
	cfg := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	machineOpts := []statemachine.Option{
		statemachine.WithLogger(statemachine.NewSlogLogger(cfg.logger)),
		statemachine.WithVerbose(cfg.verbose),
	}

	if cfg.clock != nil {
		machineOpts = append(machineOpts, statemachine.WithClock(cfg.clock))
	}

	if cfg.tracer != nil {
		machineOpts = append(machineOpts, statemachine.WithTracer(cfg.tracer))
	}

	drive, err := NewDrivetrain(period, machineOpts...)
	if err != nil {
		return nil, err
	}

	shooter, err := NewShooter(machineOpts...)
	if err != nil {
		return nil, err
	}

	s := &Sim{
		Drivetrain: drive,
		Shooter:    shooter,
		routines:   make(map[string]*statemachine.Autonomous),
		speed:      atomic.NewFloat64(0),
		turn:       atomic.NewFloat64(0),
		trigger:    atomic.NewBool(false),
	}

	robotOpts := append([]robot.Option{
		robot.WithPeriod(period),
		robot.WithLogger(cfg.logger),
		robot.WithPeriodic(robot.ModeTeleop, s.teleopPeriodic),
	}, cfg.robotOptions...)

	s.Robot = robot.New(robotOpts...)
	s.Robot.AddComponent(drive, shooter)

	square, err := DriveSquare(drive, time.Second, machineOpts...)
	if err != nil {
		return nil, err
	}

	shootAndBack, err := ShootAndBack(drive, shooter, machineOpts...)
	if err != nil {
		return nil, err
	}

	charge, err := Charge(drive, shooter, machineOpts...)
	if err != nil {
		return nil, err
	}

	for _, r := range []struct {
		name      string
		routine   *statemachine.Autonomous
		isDefault bool
	}{
		{DriveSquareName, square, true},
		{ShootAndBackName, shootAndBack, false},
		{ChargeName, charge, false},
	} {
		if err := s.Robot.AddAutonomous(r.name, r.routine, r.isDefault); err != nil {
			return nil, err
		}

		s.routines[r.name] = r.routine
	}

	return s, nil
}

// Routine returns an autonomous routine by name.
func (s *Sim) Routine(name string) (*statemachine.Autonomous, bool) {
	r, ok := s.routines[name]

	return r, ok
}

// SetJoystick sets the teleop drive command. Safe to call from any goroutine.
func (s *Sim) SetJoystick(speed, turn float64, trigger bool) {
	s.speed.Store(speed)
	s.turn.Store(turn)
	s.trigger.Store(trigger)
}

func (s *Sim) teleopPeriodic() error {
	speed, turn := s.speed.Load(), s.turn.Load()
	if speed != 0 || turn != 0 {
		s.Drivetrain.Move(speed, turn)
	}

	if s.trigger.Load() {
		return s.Shooter.Fire()
	}

	return nil
}
