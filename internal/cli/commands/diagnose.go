package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/sessionstats/pkg/config"
	"github.com/ccollicutt/sessionstats/pkg/detector"
	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <config-file>",
		Short: "Diagnose common configuration issues",
		Long: `Diagnose common configuration issues.

This command checks your configuration file for common problems:
- Config file syntax and structure
- Input file existence and accessibility
- Record format matching against actual input lines
- Webhook settings (and reachability with -v)

Example:
  sessionstats diagnose config.yaml
  sessionstats diagnose -v config.yaml  # verbose output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	results = append(results, checkInputs(cfg)...)
	results = append(results, checkRecordFormat(ctx, cfg, opts)...)
	results = append(results, checkWebhooks(ctx, cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'sessionstats inspect <log-file> --write-config config.yaml' to generate a starter config",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	if info.Size() == 0 {
		result.Status = "warning"
		result.Message = "Config file is empty, defaults will be used"
	}
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Inputs: %d", len(cfg.Inputs)),
		fmt.Sprintf("Output: %s (%s)", cfg.Output, cfg.Format),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

func checkInputs(cfg *config.Config) []DiagnosticResult {
	results := []DiagnosticResult{}

	readable := 0
	for _, input := range cfg.Inputs {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Input: %s", input),
		}

		switch {
		case input == parser.StdinPath:
			result.Status = "ok"
			result.Message = "Reads from stdin"
			readable++

		case strings.ContainsAny(input, "*?["):
			matches, err := filepath.Glob(input)
			if err != nil {
				result.Status = "error"
				result.Message = fmt.Sprintf("Invalid glob pattern: %v", err)
			} else if len(matches) == 0 {
				result.Status = "warning"
				result.Message = "Glob pattern matches no files"
				result.Suggests = []string{"Check if the input files exist at this path"}
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("Matches %d file(s)", len(matches))
				result.Details = append(result.Details, matches...)
				readable += len(matches)
			}

		default:
			info, err := os.Stat(input)
			switch {
			case os.IsNotExist(err):
				result.Status = "error"
				result.Message = "File does not exist"
				result.Suggests = []string{"Check if the input path is correct"}
			case err != nil:
				result.Status = "error"
				result.Message = fmt.Sprintf("Cannot access file: %v", err)
				result.Suggests = []string{"Check file permissions"}
			case info.IsDir():
				result.Status = "error"
				result.Message = "Path is a directory, not a file"
				result.Suggests = []string{"Use a glob pattern such as logs/*.txt"}
			case info.Size() == 0:
				result.Status = "warning"
				result.Message = "File is empty (0 bytes), the report will be empty"
				readable++
			default:
				result.Status = "ok"
				result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
				readable++
			}
		}
		results = append(results, result)
	}

	if readable == 0 {
		results = append(results, DiagnosticResult{
			Check:    "Inputs Summary",
			Status:   "error",
			Message:  "No accessible inputs found",
			Suggests: []string{"Ensure at least one input file exists and is readable"},
		})
	}

	return results
}

// checkRecordFormat samples the first readable input file with the
// configured layout and the built-in alternatives.
func checkRecordFormat(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	files, err := parser.ExpandGlobs(cfg.Inputs)
	if err != nil {
		return nil
	}

	for _, file := range files {
		if file == parser.StdinPath {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			continue
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Record Format: %s", filepath.Base(file)),
		}

		d := detector.New(
			detector.WithSampleSize(20),
			detector.WithCandidate("configured", cfg.ParserFormat()),
		)
		detected, err := d.DetectFromFile(ctx, file)
		if err != nil {
			result.Status = "warning"
			result.Message = fmt.Sprintf("Cannot read file: %v", err)
			return []DiagnosticResult{result}
		}

		configured := findMatch(detected, "configured")
		switch {
		case detected.SampledLines == 0:
			result.Status = "warning"
			result.Message = "No lines to sample"
		case configured == nil:
			result.Status = "error"
			result.Message = "Configured record format parses no sampled lines"
			if best := detected.BestMatch(); best != nil {
				result.Suggests = []string{
					fmt.Sprintf("Detected layout: %s", best.Candidate.Name),
					fmt.Sprintf("Suggested delimiter: %q", best.Candidate.Format.Delimiter),
				}
			}
		case configured.MatchCount*2 < detected.SampledLines:
			result.Status = "warning"
			result.Message = fmt.Sprintf("Record format parses only %d/%d sample lines", configured.MatchCount, detected.SampledLines)
			if configured.SampleDropped != "" {
				result.Details = []string{"Sample dropped line:", truncate(configured.SampleDropped, 80)}
			}
		default:
			result.Status = "ok"
			result.Message = fmt.Sprintf("Record format parses %d/%d sample lines", configured.MatchCount, detected.SampledLines)
			if opts.Verbose && configured.SampleSession != "" {
				result.Details = []string{"Sample session:", truncate(configured.SampleSession, 80)}
			}
		}

		if configured != nil && configured.NonNumericTimes > 0 {
			result.Details = append(result.Details,
				fmt.Sprintf("%d session time(s) are not plain integers", configured.NonNumericTimes))
		}

		return []DiagnosticResult{result}
	}

	return nil
}

func findMatch(result *detector.DetectionResult, name string) *detector.FormatMatch {
	for i := range result.Matches {
		if result.Matches[i].Candidate.Name == name {
			return &result.Matches[i]
		}
	}
	return nil
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== sessionstats Configuration Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	switch {
	case errCount > 0:
		fmt.Fprintln(w, "\nFix the errors above before running a report.")
	case warnCount > 0:
		fmt.Fprintln(w, "\nConfiguration is usable but has warnings.")
	default:
		fmt.Fprintln(w, "\nConfiguration looks good!")
	}
}

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check:   fmt.Sprintf("Webhook: %s", name),
			Status:  "ok",
			Message: fmt.Sprintf("Trigger: %s", wh.Trigger),
		}

		if opts.Verbose {
			result.Details = append(result.Details,
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			)
			if wh.Token != "" {
				result.Details = append(result.Details, "Token: configured")
			}
		}
		if wh.Trigger == config.WebhookTriggerNever {
			result.Status = "warning"
			result.Message = "Trigger is never, webhook is disabled"
		}

		results = append(results, result)

		if opts.Verbose {
			conn := checkWebhookConnectivity(ctx, wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// Just do a HEAD request to check if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}
