// Package cli provides the command-line interface for sessionstats.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/sessionstats/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		// SilenceErrors keeps cobra from printing; report once here.
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCommand creates the root cobra command. Run without a subcommand
// it behaves like "report".
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sessionstats [config-file]",
		Short: "Aggregate user session logs into a JSON report",
		Long: `sessionstats reads a log of user and session lines and writes per-user
session statistics: session counts, total and longest time, browsers used,
and visit dates.

Run without a subcommand to build a report from data.txt into result.json,
or pass a config file and flags as for "sessionstats report".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	commands.BindReport(rootCmd)

	rootCmd.AddCommand(commands.NewReportCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
