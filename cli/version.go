package cli

import (
	"fmt"

	"github.com/amp-labs/magicbot/build"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var deps bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := build.Current()

			if deps {
				fmt.Fprint(cmd.OutOrStdout(), info.Describe())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&deps, "deps", false, "also list module dependencies")

	return cmd
}
