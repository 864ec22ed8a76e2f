package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cedarhq/uiprobe/internal/scenario"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		Long: `List the scenarios the run command accepts, in execution order.

Includes the built-in set plus any YAML definitions loaded with --scenarios.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listScenarios(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ScenarioDir, "scenarios", "", "directory of extra YAML scenario definitions")

	return cmd
}

func listScenarios(opts *RunOptions, cmd *cobra.Command) error {
	reg := scenario.Builtins()
	if opts.ScenarioDir != "" {
		extras, err := scenario.LoadScenarioDir(opts.ScenarioDir)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load scenario definitions", err)
		}
		for _, sc := range extras {
			if err := reg.Register(sc); err != nil {
				return WrapExitError(ExitCommandError, "failed to register scenario", err)
			}
		}
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return renderLabelsJSON(out, reg.Labels())
	}
	for _, sc := range reg.All() {
		fmt.Fprintf(out, "%-24s %s\n", sc.Label, sc.Description)
	}
	return nil
}
