package cli

import (
	"fmt"
	"log/slog"

	"github.com/amp-labs/magicbot/sim"
	"github.com/spf13/cobra"
)

// NewModesCommand creates the modes command.
func NewModesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the autonomous routines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sim.NewRobot(rootOpts.Config.Period, sim.WithLogger(slog.New(slog.DiscardHandler)))
			if err != nil {
				return err
			}

			defer s.Robot.Close()

			out := cmd.OutOrStdout()

			for _, name := range s.Robot.AutonomousModes() {
				routine, _ := s.Routine(name)
				marker := ""

				if name == s.Robot.DefaultAutonomous() {
					marker = " (default)"
				}

				fmt.Fprintf(out, "%s%s\t%d states\n", name, marker, routine.Machine().Registry().Len())
			}

			return nil
		},
	}
}
