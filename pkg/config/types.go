// Package config provides configuration loading and validation for sessionstats.
package config

import (
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Inputs lists log files or glob patterns, read in order. "-" is stdin.
	Inputs []string `yaml:"inputs"`

	// Output is the report destination. "-" is stdout.
	Output string `yaml:"output"`

	// Format selects the report encoding.
	Format OutputFormat `yaml:"format"`

	// Workers bounds per-user aggregation concurrency.
	Workers int `yaml:"workers"`

	// MergePolicy resolves users sharing a display name.
	MergePolicy string `yaml:"merge_policy"`

	RecordFormat RecordFormatConfig `yaml:"record_format"`
	Log          LogConfig          `yaml:"log"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Webhooks     []WebhookConfig    `yaml:"webhooks,omitempty"`
}

// OutputFormat is the report encoding.
type OutputFormat string

const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatText OutputFormat = "text"
)

// RecordFormatConfig describes the input line layout.
type RecordFormatConfig struct {
	Delimiter  string `yaml:"delimiter"`
	UserTag    string `yaml:"user_tag"`
	SessionTag string `yaml:"session_tag"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerAlways fires after every run (default).
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNonEmpty fires only when the report has at least one session.
	WebhookTriggerNonEmpty WebhookTrigger = "non_empty"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines an endpoint that receives the finished report.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger defaults to "always".
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
