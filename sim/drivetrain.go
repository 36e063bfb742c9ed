package sim

import (
	"math"
	"time"

	"github.com/amp-labs/magicbot/statemachine"
)

// Pose is the simulated position of the robot on the field.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// Drivetrain integrates speed commands into a pose. Commands only last one
// tick: callers repeat Move on every tick they want the robot to keep moving,
// and the drivetrain falls back to idle as soon as they stop.
type Drivetrain struct {
	machine *statemachine.Machine
	period  time.Duration

	speed float64
	turn  float64

	pose     Pose
	distance float64
}

// NewDrivetrain creates a drivetrain integrating once per period.
func NewDrivetrain(period time.Duration, opts ...statemachine.Option) (*Drivetrain, error) {
	d := &Drivetrain{period: period}

	machine, err := statemachine.NewBuilder("drivetrain").
		Default("idle", d.idle).
		State("drive", d.drive, statemachine.First()).
		Build(opts...)
	if err != nil {
		return nil, err
	}

	d.machine = machine

	return d, nil
}

// Name implements robot.Named.
func (d *Drivetrain) Name() string {
	return d.machine.Name()
}

// Move commands a forward speed in m/s and a turn rate in rad/s for this tick.
func (d *Drivetrain) Move(speed, turn float64) {
	d.speed, d.turn = speed, turn

	// The drivetrain table has no initial state override, so Engage cannot fail.
	_ = d.machine.Engage()
}

// Pose returns the current pose.
func (d *Drivetrain) Pose() Pose {
	return d.pose
}

// Distance returns the total distance travelled in meters.
func (d *Drivetrain) Distance() float64 {
	return d.distance
}

// State returns the drivetrain state, "idle" or "drive".
func (d *Drivetrain) State() string {
	return d.machine.CurrentState()
}

func (d *Drivetrain) OnEnabled() {
	d.machine.OnEnabled()
}

func (d *Drivetrain) OnDisabled() {
	d.machine.OnDisabled()
	d.speed, d.turn = 0, 0
}

func (d *Drivetrain) Execute() error {
	err := d.machine.Execute()
	d.speed, d.turn = 0, 0

	return err
}

func (d *Drivetrain) idle(time.Duration, bool) error {
	return nil
}

func (d *Drivetrain) drive(time.Duration, bool) error {
	dt := d.period.Seconds()

	d.pose.Heading = normalizeAngle(d.pose.Heading + d.turn*dt)
	d.pose.X += d.speed * math.Cos(d.pose.Heading) * dt
	d.pose.Y += d.speed * math.Sin(d.pose.Heading) * dt
	d.distance += math.Abs(d.speed) * dt

	return nil
}

// normalizeAngle maps a to (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)

	switch {
	case a > math.Pi:
		a -= 2 * math.Pi
	case a <= -math.Pi:
		a += 2 * math.Pi
	}

	return a
}
