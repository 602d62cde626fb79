package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/sessionstats/internal/logging"
	"github.com/ccollicutt/sessionstats/internal/telemetry"
	"github.com/ccollicutt/sessionstats/pkg/analyzer"
	"github.com/ccollicutt/sessionstats/pkg/config"
	"github.com/ccollicutt/sessionstats/pkg/output"
	"github.com/ccollicutt/sessionstats/pkg/parser"
	"github.com/ccollicutt/sessionstats/pkg/webhook"
)

// ReportOptions holds command-line options for the report command.
// Flags that are not set leave the configured value alone.
type ReportOptions struct {
	Inputs      []string
	Output      string
	Format      string
	Workers     int
	MergePolicy string
	LogLevel    string
	Verbose     bool
	Quiet       bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

const reportLong = `Read user and session lines from the inputs, aggregate per-user session
statistics and write the report.

Without a config file the report reads data.txt and writes result.json.
Settings are applied in order: defaults, config file, SESSIONSTATS_*
environment variables, command-line flags. Use "-" as an input for stdin
and as the output for stdout.

Exit codes:
  0 - Report written
  1 - Configuration or runtime error`

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [config-file]",
		Short: "Aggregate session logs into a report",
		Long:  reportLong,
	}
	BindReport(cmd)
	return cmd
}

// BindReport attaches the report flags, arguments and action to cmd, so the
// root command can run a report when no subcommand is given.
func BindReport(cmd *cobra.Command) {
	opts := &ReportOptions{}

	cmd.Args = cobra.MaximumNArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, args, opts)
	}

	cmd.Flags().StringArrayVarP(&opts.Inputs, "input", "i", nil, "Input file or glob (repeatable, \"-\" for stdin)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Report destination (\"-\" for stdout)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Report format (json|text)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Goroutines used for per-user aggregation")
	cmd.Flags().StringVar(&opts.MergePolicy, "merge-policy", "", "Display name collisions (overwrite|error|disambiguate)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include run details in text reports")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary line only in text reports")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerAlways), "When to fire webhook (always|non_empty|never)")
}

func runReport(cmd *cobra.Command, args []string, opts *ReportOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var configPath string
	if len(args) == 1 {
		configPath = args[0]
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	applyReportFlags(cmd, cfg, opts)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	runID := uuid.NewString()
	ctx = logging.AddToContext(ctx, logger)
	ctx = logging.AddMetaToContext(ctx, slog.String("run_id", runID))
	logger = logging.FromContext(ctx)

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.SetupOTelSDK(ctx, cfg.Telemetry.ServiceName, Version)
		if err != nil {
			return fmt.Errorf("setting up telemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.WarnContext(ctx, "telemetry shutdown failed", "error", err)
			}
		}()
	}

	files, err := parser.ExpandGlobs(cfg.Inputs)
	if err != nil {
		return fmt.Errorf("expanding inputs: %w", err)
	}

	analyzerOpts := []analyzer.AnalyzerOption{
		analyzer.WithRecordFormat(cfg.ParserFormat()),
		analyzer.WithWorkers(cfg.Workers),
		analyzer.WithMergePolicy(cfg.Policy()),
	}
	if cfg.Telemetry.Enabled {
		analyzerOpts = append(analyzerOpts, analyzer.WithInstrumentation())
	}

	a, err := analyzer.NewAnalyzer(analyzerOpts...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	formatter, err := output.NewFormatter(string(cfg.Format), output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	source := parser.NewFileSource(files)
	source.SetStdin(cmd.InOrStdin())
	defer source.Close()

	logger.InfoContext(ctx, "starting report", "inputs", files, "output", cfg.Output, "workers", cfg.Workers)

	start := time.Now()
	stats, err := a.Analyze(ctx, source)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(stats, output.Metadata{
		RunID:      runID,
		ConfigFile: configPath,
		Sources:    files,
		AnalyzedAt: time.Now(),
		Duration:   time.Since(start),
	})

	err = output.WriteFile(cfg.Output, cmd.OutOrStdout(), func(w io.Writer) error {
		return formatter.Format(ctx, report, w)
	})
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	logger.InfoContext(ctx, "report written",
		"output", cfg.Output,
		"users", stats.TotalUsers,
		"sessions", stats.TotalSessions,
		"duration", report.Metadata.Duration,
	)

	// Webhook failures are logged and never fail the run.
	sendWebhooks(ctx, cfg, report)

	return nil
}

// applyReportFlags copies explicitly set flags over the loaded config.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config, opts *ReportOptions) {
	flags := cmd.Flags()

	if flags.Changed("input") {
		cfg.Inputs = opts.Inputs
	}
	if flags.Changed("output") {
		cfg.Output = opts.Output
	}
	if flags.Changed("format") {
		cfg.Format = config.OutputFormat(opts.Format)
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if flags.Changed("merge-policy") {
		cfg.MergePolicy = opts.MergePolicy
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.WebhookURL != "" {
		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: config.WebhookTrigger(opts.WebhookTrigger),
		})
	}
}

// sendWebhooks posts the report to every webhook whose trigger fires.
func sendWebhooks(ctx context.Context, cfg *config.Config, report *output.Report) {
	if len(cfg.Webhooks) == 0 {
		return
	}

	logger := logging.FromContext(ctx)
	client := webhook.NewClient()

	for _, wh := range cfg.Webhooks {
		if !shouldFireWebhook(wh.Trigger, report.HasSessions()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			logger.InfoContext(ctx, "webhook sent",
				slog.String("webhook", name),
				slog.Int("status", resp.StatusCode),
				slog.Duration("duration", resp.Duration),
			)
		} else {
			logger.WarnContext(ctx, "webhook failed",
				slog.String("webhook", name),
				slog.Any("error", resp.Error),
			)
		}
	}
}

// shouldFireWebhook determines if a webhook should fire for a report.
func shouldFireWebhook(trigger config.WebhookTrigger, hasSessions bool) bool {
	switch trigger {
	case config.WebhookTriggerNever:
		return false
	case config.WebhookTriggerNonEmpty:
		return hasSessions
	default:
		// Default to always
		return true
	}
}
