package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/sessionstats/pkg/config"
	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a sessionstats configuration file without running a report.

Checks:
  - YAML syntax
  - Output format, worker count and merge policy
  - Record format (delimiter and tags)
  - Log settings and webhook URLs
  - Input file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Inputs:        %d pattern(s)\n", len(cfg.Inputs))
	fmt.Fprintf(w, "  Output:        %s (%s)\n", cfg.Output, cfg.Format)
	fmt.Fprintf(w, "  Workers:       %d\n", cfg.Workers)
	fmt.Fprintf(w, "  Merge policy:  %s\n", cfg.Policy())
	fmt.Fprintf(w, "  Record format: delimiter %q, tags %q/%q\n",
		cfg.RecordFormat.Delimiter, cfg.RecordFormat.UserTag, cfg.RecordFormat.SessionTag)
	fmt.Fprintf(w, "  Webhooks:      %d\n", len(cfg.Webhooks))

	// Input existence is only a warning; inputs may be produced later.
	files, err := parser.ExpandGlobs(cfg.Inputs)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding input patterns: %v\n", err)
		return nil
	}

	fmt.Fprintf(w, "\nInputs matched: %d\n", len(files))
	for _, f := range files {
		if f == parser.StdinPath {
			fmt.Fprintf(w, "  - %s (stdin)\n", f)
			continue
		}
		if _, err := os.Stat(f); err != nil {
			fmt.Fprintf(w, "  - %s (warning: not found)\n", f)
			continue
		}
		fmt.Fprintf(w, "  - %s\n", f)
	}

	return nil
}
