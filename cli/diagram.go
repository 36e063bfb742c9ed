package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/amp-labs/magicbot/sim"
	"github.com/amp-labs/magicbot/statemachine/visualizer"
	"github.com/spf13/cobra"
)

// ErrDiagramSource is returned unless exactly one of a file or --routine is given.
var ErrDiagramSource = errors.New("give either a table file or --routine")

type diagramOptions struct {
	routine     string
	direction   string
	noDurations bool
	highlight   []string
}

// NewDiagramCommand creates the diagram command.
func NewDiagramCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &diagramOptions{}

	cmd := &cobra.Command{
		Use:   "diagram [table.yaml]",
		Short: "Print a Mermaid state diagram",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagram(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.routine, "routine", "", "draw a built-in autonomous routine")
	cmd.Flags().StringVar(&opts.direction, "direction", "TB", "diagram direction (TB|LR)")
	cmd.Flags().BoolVar(&opts.noDurations, "no-durations", false, "leave durations off the diagram")
	cmd.Flags().StringSliceVar(&opts.highlight, "highlight", nil, "states to highlight")

	return cmd
}

func runDiagram(cmd *cobra.Command, rootOpts *RootOptions, opts *diagramOptions, args []string) error {
	if (len(args) == 1) == (opts.routine != "") {
		return ErrDiagramSource
	}

	vopts := visualizer.DefaultOptions().
		WithDirection(opts.direction).
		WithShowDurations(!opts.noDurations).
		WithHighlightPath(opts.highlight)

	var (
		diagram string
		err     error
	)

	if len(args) == 1 {
		diagram, err = visualizer.GenerateMermaidFromFile(args[0], vopts)
	} else {
		diagram, err = routineDiagram(rootOpts, opts.routine, vopts)
	}

	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), diagram)

	return nil
}

func routineDiagram(rootOpts *RootOptions, name string, vopts visualizer.Options) (string, error) {
	s, err := sim.NewRobot(rootOpts.Config.Period, sim.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		return "", err
	}

	defer s.Robot.Close()

	routine, ok := s.Routine(name)
	if !ok {
		return "", fmt.Errorf("unknown routine %q (have %v)", name, s.Robot.AutonomousModes())
	}

	return visualizer.GenerateMermaidWithOptions(routine.Machine().Registry(), vopts)
}
