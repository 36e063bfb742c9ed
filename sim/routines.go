package sim

import (
	"embed"
	"fmt"
	"math"
	"time"

	"github.com/amp-labs/magicbot/statemachine"
)

//go:embed tables/*.yaml
var tables embed.FS

// Routine names.
const (
	DriveSquareName  = "drive_square"
	ShootAndBackName = "shoot_and_back"
	ChargeName       = "charge"
)

const (
	quarterTurn = 250 * time.Millisecond
	backUpSpeed = -1.0
)

// DriveSquare drives four sides of side duration at 1 m/s, turning left in
// place between them.
func DriveSquare(drive *Drivetrain, side time.Duration, opts ...statemachine.Option) (*statemachine.Autonomous, error) {
	var machine *statemachine.Machine

	turnRate := (math.Pi / 2) / quarterTurn.Seconds()

	forward := func(time.Duration, bool) error {
		drive.Move(1, 0)

		return nil
	}

	turn := func(time.Duration, bool) error {
		drive.Move(0, turnRate)

		return nil
	}

	b := statemachine.NewBuilder(DriveSquareName)

	for i := 1; i <= 4; i++ {
		sideOpts := []statemachine.StateOption{statemachine.Next(fmt.Sprintf("turn%d", i))}
		if i == 1 {
			sideOpts = append(sideOpts, statemachine.First())
		}

		next := fmt.Sprintf("side%d", i+1)
		if i == 4 {
			next = "finish"
		}

		b.Timed(fmt.Sprintf("side%d", i), side, forward, sideOpts...)
		b.Timed(fmt.Sprintf("turn%d", i), quarterTurn, turn, statemachine.Next(next))
	}

	b.State("finish", func(time.Duration, bool) error {
		machine.Done()

		return nil
	})

	machine, err := b.Build(opts...)
	if err != nil {
		return nil, err
	}

	return statemachine.NewAutonomous(machine), nil
}

// ShootAndBack aims for half a second, fires one ball and backs away. Once
// the shot has started it is completed even if autonomous ends.
func ShootAndBack(drive *Drivetrain, shooter *Shooter, opts ...statemachine.Option) (*statemachine.Autonomous, error) {
	var (
		machine   *statemachine.Machine
		shotsSeen int
	)

	machine, err := statemachine.NewBuilder(ShootAndBackName).
		Timed("aim", 500*time.Millisecond, func(_ time.Duration, initialCall bool) error {
			if initialCall {
				shotsSeen = shooter.Shots()
			}

			shooter.SpinUp()

			return nil
		}, statemachine.First(), statemachine.Next("shoot")).
		State("shoot", func(time.Duration, bool) error {
			if shooter.Shots() > shotsSeen {
				return machine.NextState("back_up")
			}

			return shooter.Fire()
		}, statemachine.MustFinish()).
		Timed("back_up", 1500*time.Millisecond, func(time.Duration, bool) error {
			drive.Move(backUpSpeed, 0)

			return nil
		}, statemachine.Next("finish")).
		State("finish", func(time.Duration, bool) error {
			machine.Done()

			return nil
		}).
		Build(opts...)
	if err != nil {
		return nil, err
	}

	return statemachine.NewAutonomous(machine), nil
}

// Charge spins up, drives forward and fires for a second. Its states are
// declared in tables/charge.yaml.
func Charge(drive *Drivetrain, shooter *Shooter, opts ...statemachine.Option) (*statemachine.Autonomous, error) {
	table, err := statemachine.LoadTableFromFS(tables, "tables/charge.yaml")
	if err != nil {
		return nil, err
	}

	var machine *statemachine.Machine

	machine, err = table.Build(map[string]statemachine.StateFunc{
		"wait": func(time.Duration, bool) error { return nil },
		"spin_up": func(time.Duration, bool) error {
			shooter.SpinUp()

			return nil
		},
		"drive": func(time.Duration, bool) error {
			shooter.SpinUp()
			drive.Move(1, 0)

			return nil
		},
		"fire": func(time.Duration, bool) error {
			return shooter.Fire()
		},
		"finish": func(time.Duration, bool) error {
			machine.Done()

			return nil
		},
	}, opts...)
	if err != nil {
		return nil, err
	}

	return statemachine.NewAutonomous(machine), nil
}

// Tables returns the embedded state tables, for validation and diagrams.
func Tables() embed.FS {
	return tables
}
