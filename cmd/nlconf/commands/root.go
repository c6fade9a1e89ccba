// Package commands wires the command-line interface of the namelist
// generator. Every command is built by a newXCommand constructor and the
// reporter travels with the command context.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	silent  bool
	strict  bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nlconf",
		Short: "nlconf - Land-model namelist configuration generator",
		Long: `nlconf resolves a complete, validated land-model namelist from layered
input sources and a best-fit defaults catalog.

Resolution order (highest precedence first):
  - single-purpose command-line settings (conflict-checked)
  - inline namelist text (--namelist)
  - override files, in the order given (--infile)
  - the selected use-case bundle (--use-case)
  - the built-in defaults catalog, selected by attribute best fit

The resolved document is checked against the variable schema and a table
of cross-field consistency rules before anything is written to disk.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "print only errors")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "escalate warnings to a fatal error")

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newListCommand())

	return rootCmd
}
