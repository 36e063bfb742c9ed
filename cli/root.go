package cli

import (
	"github.com/amp-labs/magicbot/config"
	"github.com/spf13/cobra"
)

// RootOptions holds settings shared by all commands.
type RootOptions struct {
	Config  config.Config
	Verbose bool
	Picker  Picker
}

// NewRootCommand creates the magicbot command line.
func NewRootCommand() *cobra.Command {
	return newRootCommand(PromptPicker)
}

func newRootCommand(picker Picker) *cobra.Command {
	opts := &RootOptions{Picker: picker}

	cmd := &cobra.Command{
		Use:   "magicbot",
		Short: "Run timed state machines on a fixed-period control loop",
		Long: `magicbot drives robot components and autonomous routines from a
single fixed-period control loop. Routines are timed state machines,
declared in code or in YAML tables.

Settings are read from the environment (MAGICBOT_*, LOG_*, OTEL_*);
flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("verbose") {
				cfg.Verbose = opts.Verbose
			}

			opts.Config = cfg

			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log every state transition")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewModesCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDiagramCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
