package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/sessionstats/pkg/detector"
	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// InspectOptions holds command-line options for the inspect command.
type InspectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:     "inspect <log-file>",
		Aliases: []string{"detect"},
		Short:   "Inspect the record layout of a log file",
		Long: `Sample lines from a log file and work out how they are laid out.

Each sampled line is classified as a user record, a session record, a
malformed record (known tag, too few fields) or unknown. Common delimiters
(comma, semicolon, pipe, tab) are tried and the best fit is reported with
example lines and the number of session times that are not plain integers.

Optionally writes a starter config with --write-config.

Example:
  sessionstats inspect data.txt
  sessionstats inspect --sample 500 data.txt
  sessionstats inspect -w sessionstats.yaml data.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all matching layouts, not just the best one")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string, opts *InspectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if logFile != parser.StdinPath {
		if _, err := os.Stat(logFile); os.IsNotExist(err) {
			return fmt.Errorf("log file not found: %s", logFile)
		}
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	src := parser.NewFileSource([]string{logFile})
	src.SetStdin(cmd.InOrStdin())
	defer src.Close()

	result, err := d.DetectFromSource(ctx, src)
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	w := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, result, logFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputInspectJSON(w, result, logFile, opts)
	case "text":
		return outputInspectText(w, result, logFile, opts)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputInspectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *InspectOptions) error {
	fmt.Fprintln(w, "=== Record Layout Inspection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines with records: %d\n", result.ParsedLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No record layout detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: lines should start with a user or session tag, for example:")
		fmt.Fprintln(w, "  user,1,Leida,Cira,0")
		fmt.Fprintln(w, "  session,1,0,Safari 29,87,2016-10-23")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected layout: %s (delimiter %q)\n", best.Candidate.Name, best.Candidate.Format.Delimiter)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines parsed)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Line kinds:")
	for _, kind := range []parser.RecordKind{parser.KindUser, parser.KindSession, parser.KindMalformed, parser.KindUnknown} {
		fmt.Fprintf(w, "  %-10s %d\n", kind, best.Kinds[kind])
	}
	fmt.Fprintln(w)

	if best.SampleUser != "" {
		fmt.Fprintf(w, "Sample user:\n  %s\n", best.SampleUser)
	}
	if best.SampleSession != "" {
		fmt.Fprintf(w, "Sample session:\n  %s\n", best.SampleSession)
	}
	if best.SampleDropped != "" {
		fmt.Fprintf(w, "Sample dropped line:\n  %s\n", truncate(best.SampleDropped, 80))
	}
	fmt.Fprintln(w)

	if best.NonNumericTimes > 0 {
		fmt.Fprintf(w, "WARNING: %d session time(s) are not plain integers; they count as their leading digits or 0.\n",
			best.NonNumericTimes)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprint(w, recordFormatYAML(best.Candidate))
	fmt.Fprintln(w)

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Alternative layouts detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Candidate.Name, m.Confidence*100)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a layout match in JSON output.
type JSONMatch struct {
	Name            string         `json:"name"`
	Delimiter       string         `json:"delimiter"`
	UserTag         string         `json:"user_tag"`
	SessionTag      string         `json:"session_tag"`
	Confidence      float64        `json:"confidence"`
	MatchCount      int            `json:"match_count"`
	Kinds           map[string]int `json:"kinds"`
	NonNumericTimes int            `json:"non_numeric_times"`
	SampleUser      string         `json:"sample_user,omitempty"`
	SampleSession   string         `json:"sample_session,omitempty"`
	SampleDropped   string         `json:"sample_dropped,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File         string      `json:"file"`
	Matches      []JSONMatch `json:"matches"`
	SampledLines int         `json:"sampled_lines"`
	ParsedLines  int         `json:"parsed_lines"`
}

func outputInspectJSON(w io.Writer, result *detector.DetectionResult, logFile string, opts *InspectOptions) error {
	out := JSONOutput{
		File:         logFile,
		SampledLines: result.SampledLines,
		ParsedLines:  result.ParsedLines,
		Matches:      make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		kinds := make(map[string]int, len(m.Kinds))
		for k, n := range m.Kinds {
			kinds[string(k)] = n
		}
		out.Matches = append(out.Matches, JSONMatch{
			Name:            m.Candidate.Name,
			Delimiter:       m.Candidate.Format.Delimiter,
			UserTag:         m.Candidate.Format.UserTag,
			SessionTag:      m.Candidate.Format.SessionTag,
			Confidence:      m.Confidence,
			MatchCount:      m.MatchCount,
			Kinds:           kinds,
			NonNumericTimes: m.NonNumericTimes,
			SampleUser:      m.SampleUser,
			SampleSession:   m.SampleSession,
			SampleDropped:   m.SampleDropped,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func recordFormatYAML(c *detector.Candidate) string {
	return fmt.Sprintf("record_format:\n  delimiter: %q\n  user_tag: %s\n  session_tag: %s\n",
		c.Format.Delimiter, c.Format.UserTag, c.Format.SessionTag)
}

// writeStarterConfig generates a starter config file with the detected layout.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, logFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no record layout detected")
	}

	content := generateStarterConfig(logFile, result.BestMatch())

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(logFile string, match *detector.FormatMatch) string {
	absLogFile := logFile
	if logFile != parser.StdinPath {
		if abs, err := filepath.Abs(logFile); err == nil {
			absLogFile = abs
		}
	}

	return fmt.Sprintf(`# sessionstats configuration
# Generated by: sessionstats inspect
# Detected layout: %s (%.0f%% confidence)

inputs:
  - %s
  # Add more files or use globs:
  # - logs/*.txt

output: result.json
format: json
workers: 1
merge_policy: overwrite

%s
log:
  level: info
  format: text

# webhooks:
#   - name: ops
#     url: https://hooks.example.com/sessionstats
#     token: ${SESSIONSTATS_WEBHOOK_TOKEN}
#     trigger: non_empty
`, match.Candidate.Name, match.Confidence*100, absLogFile, recordFormatYAML(match.Candidate))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
