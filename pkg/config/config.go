package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/sessionstats/internal/logging"
	"github.com/ccollicutt/sessionstats/pkg/analyzer"
	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// Load reads and validates a configuration file.
// An empty path skips the file and starts from DefaultConfig.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills per-webhook defaults.
func Validate(cfg *Config) error {
	if len(cfg.Inputs) == 0 {
		return errors.New("inputs: at least one input is required")
	}
	for i, in := range cfg.Inputs {
		if strings.TrimSpace(in) == "" {
			return fmt.Errorf("inputs[%d]: path is empty", i)
		}
	}

	if cfg.Output == "" {
		return errors.New("output: path is required")
	}

	switch cfg.Format {
	case OutputFormatJSON, OutputFormatText:
	default:
		return fmt.Errorf("format: invalid value %q (must be json or text)", cfg.Format)
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("workers: must be >= 1, got %d", cfg.Workers)
	}

	if _, err := analyzer.ParseMergePolicy(cfg.MergePolicy); err != nil {
		return fmt.Errorf("merge_policy: %w", err)
	}

	if err := validateRecordFormat(&cfg.RecordFormat); err != nil {
		return fmt.Errorf("record_format: %w", err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = DefaultServiceName
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// ParserFormat converts the record format section for the parser.
func (c *Config) ParserFormat() parser.RecordFormat {
	return parser.RecordFormat{
		Delimiter:  c.RecordFormat.Delimiter,
		UserTag:    c.RecordFormat.UserTag,
		SessionTag: c.RecordFormat.SessionTag,
	}
}

// Policy returns the parsed merge policy. Call after Validate.
func (c *Config) Policy() analyzer.MergePolicy {
	p, err := analyzer.ParseMergePolicy(c.MergePolicy)
	if err != nil {
		return analyzer.MergeOverwrite
	}
	return p
}

func validateRecordFormat(rf *RecordFormatConfig) error {
	if rf.Delimiter == "" {
		return errors.New("delimiter is required")
	}
	if rf.UserTag == "" {
		return errors.New("user_tag is required")
	}
	if rf.SessionTag == "" {
		return errors.New("session_tag is required")
	}
	if rf.UserTag == rf.SessionTag {
		return fmt.Errorf("user_tag and session_tag must differ, both are %q", rf.UserTag)
	}
	if strings.Contains(rf.UserTag, rf.Delimiter) || strings.Contains(rf.SessionTag, rf.Delimiter) {
		return fmt.Errorf("tags must not contain the delimiter %q", rf.Delimiter)
	}
	return nil
}

func validateLog(lc *LogConfig) error {
	if _, err := logging.ParseLevel(lc.Level); err != nil {
		return err
	}
	switch lc.Format {
	case "":
		lc.Format = DefaultLogFormat
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid format %q (must be text or json)", lc.Format)
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerAlways
	case WebhookTriggerAlways, WebhookTriggerNonEmpty, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be always, non_empty, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands a token written as ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
