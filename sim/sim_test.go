package sim

import (
	"math"
	"testing"
	"time"

	"github.com/amp-labs/magicbot/robot"
	smtesting "github.com/amp-labs/magicbot/statemachine/testing"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const period = 20 * time.Millisecond

func newSim(t *testing.T) (*Sim, *smtesting.FakeClock) {
	t.Helper()

	clock := smtesting.NewFakeClock()

	s, err := NewRobot(period,
		WithClock(clock),
		WithLogger(slogt.New(t)),
		WithRobotOptions(robot.WithName(t.Name())),
	)
	require.NoError(t, err)
	t.Cleanup(s.Robot.Close)

	return s, clock
}

func runFor(t *testing.T, s *Sim, clock *smtesting.FakeClock, mode robot.Mode, d time.Duration) {
	t.Helper()

	require.NoError(t, s.Robot.RequestMode(mode))

	for elapsed := time.Duration(0); elapsed < d; elapsed += period {
		require.NoError(t, s.Robot.Tick(t.Context()))
		clock.Advance(period)
	}
}

func TestAutonomousModes(t *testing.T) {
	t.Parallel()

	s, _ := newSim(t)

	assert.Equal(t, []string{ChargeName, DriveSquareName, ShootAndBackName}, s.Robot.AutonomousModes())
	assert.Equal(t, DriveSquareName, s.Robot.DefaultAutonomous())
}

func TestDriveSquare(t *testing.T) {
	t.Parallel()

	s, clock := newSim(t)

	runFor(t, s, clock, robot.ModeAutonomous, 6*time.Second)

	routine, ok := s.Routine(DriveSquareName)
	require.True(t, ok)
	assert.False(t, routine.Running(), "routine finishes on its own")

	assert.InDelta(t, 4.0, s.Drivetrain.Distance(), 0.1)

	pose := s.Drivetrain.Pose()
	assert.InDelta(t, 0, math.Hypot(pose.X, pose.Y), 0.5, "square ends near the start")
	assert.InDelta(t, 0, pose.Heading, 0.5)
	assert.Equal(t, "idle", s.Drivetrain.State())
}

func TestShootAndBack(t *testing.T) {
	t.Parallel()

	s, clock := newSim(t)
	require.NoError(t, s.Robot.SelectAutonomous(ShootAndBackName))

	runFor(t, s, clock, robot.ModeAutonomous, 4*time.Second)

	routine, _ := s.Routine(ShootAndBackName)
	assert.False(t, routine.Running())

	assert.Equal(t, 1, s.Shooter.Shots())
	assert.InDelta(t, 1.5, s.Drivetrain.Distance(), 0.1)
	assert.InDelta(t, -1.5, s.Drivetrain.Pose().X, 0.1)
}

func TestCharge(t *testing.T) {
	t.Parallel()

	s, clock := newSim(t)
	require.NoError(t, s.Robot.SelectAutonomous(ChargeName))

	runFor(t, s, clock, robot.ModeAutonomous, time.Second)
	assert.InDelta(t, WheelSpeed, s.Shooter.WheelSpeed(), 0, "flywheel held at speed while driving")
	assert.Zero(t, s.Shooter.Shots())

	runFor(t, s, clock, robot.ModeAutonomous, 3*time.Second)

	routine, _ := s.Routine(ChargeName)
	assert.False(t, routine.Running())
	assert.GreaterOrEqual(t, s.Shooter.Shots(), 1)
	assert.InDelta(t, 1.5, s.Drivetrain.Distance(), 0.1)
}

func TestTeleop(t *testing.T) {
	t.Parallel()

	s, clock := newSim(t)

	s.SetJoystick(1, 0, false)
	runFor(t, s, clock, robot.ModeTeleop, time.Second)
	assert.InDelta(t, 1.0, s.Drivetrain.Distance(), 0.05)
	assert.Equal(t, "drive", s.Drivetrain.State())

	s.SetJoystick(0, 0, false)
	runFor(t, s, clock, robot.ModeTeleop, period)
	assert.Equal(t, "idle", s.Drivetrain.State())

	s.SetJoystick(0, 0, true)
	runFor(t, s, clock, robot.ModeTeleop, time.Second)
	assert.GreaterOrEqual(t, s.Shooter.Shots(), 1)
}

func TestDisableStopsRoutine(t *testing.T) {
	t.Parallel()

	s, clock := newSim(t)

	runFor(t, s, clock, robot.ModeAutonomous, 500*time.Millisecond)

	routine, _ := s.Routine(DriveSquareName)
	require.True(t, routine.Running())

	runFor(t, s, clock, robot.ModeDisabled, period)
	assert.False(t, routine.Running())
	assert.Equal(t, robot.ModeDisabled, s.Robot.Mode())

	distance := s.Drivetrain.Distance()
	runFor(t, s, clock, robot.ModeDisabled, time.Second)
	assert.InDelta(t, distance, s.Drivetrain.Distance(), 0)
}

func TestNormalizeAngle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{4 * math.Pi, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, normalizeAngle(tt.in), 1e-9, "normalizeAngle(%v)", tt.in)
	}
}
