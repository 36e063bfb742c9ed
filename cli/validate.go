package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/amp-labs/magicbot/sim"
	"github.com/amp-labs/magicbot/statemachine"
	"github.com/amp-labs/magicbot/statemachine/validator"
	"github.com/spf13/cobra"
)

// ErrValidationFailed is returned when at least one table has errors.
var ErrValidationFailed = errors.New("validation failed")

type validateOptions struct {
	strict bool
	fix    bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(_ *RootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [table.yaml...]",
		Short: "Validate state tables",
		Long: `Validate YAML state tables. Unlike building a machine, validation
reports every problem at once and checks that every next state exists.
Without arguments the built-in routine tables are validated.

With --fix the suggested fixes are applied and the fixed table is
printed; the file itself is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&opts.fix, "fix", false, "print the table with suggested fixes applied")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions, paths []string) error {
	type source struct {
		name string
		load func() (*statemachine.Table, error)
	}

	var sources []source

	if len(paths) == 0 {
		names, err := fs.Glob(sim.Tables(), "tables/*.yaml")
		if err != nil {
			return err
		}

		for _, name := range names {
			sources = append(sources, source{name: name, load: func() (*statemachine.Table, error) {
				return statemachine.LoadTableFromFS(sim.Tables(), name)
			}})
		}
	}

	for _, path := range paths {
		sources = append(sources, source{name: path, load: func() (*statemachine.Table, error) {
			return statemachine.LoadTable(path)
		}})
	}

	out := cmd.OutOrStdout()
	failed := 0

	for _, src := range sources {
		fmt.Fprintf(out, "%s:\n", src.name)

		table, err := src.load()
		if err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)

			failed++

			continue
		}

		var result validator.ValidationResult
		if opts.strict {
			result = validator.ValidateWithRulesStrict(table, validator.DefaultRules())
		} else {
			result = validator.Validate(table)
		}

		fmt.Fprint(out, result.String())

		if !result.Valid {
			failed++
		}

		if opts.fix && len(result.Fixes()) > 0 {
			if err := printFixed(cmd, table, result); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d table(s)", ErrValidationFailed, failed, len(sources))
	}

	return nil
}

func printFixed(cmd *cobra.Command, table *statemachine.Table, result validator.ValidationResult) error {
	fixed, err := validator.ApplyFixes(table, result.Fixes())
	if err != nil {
		return err
	}

	data, err := fixed.Marshal()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n# fixed\n%s", data)

	return nil
}
