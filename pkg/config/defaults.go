package config

import (
	"time"
)

// Default values for configuration.
const (
	DefaultInput          = "data.txt"
	DefaultOutput         = "result.json"
	DefaultFormat         = OutputFormatJSON
	DefaultWorkers        = 1
	DefaultMergePolicy    = "overwrite"
	DefaultDelimiter      = ","
	DefaultUserTag        = "user"
	DefaultSessionTag     = "session"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultServiceName    = "sessionstats"
	DefaultWebhookTimeout = 10 * time.Second
)

// EnvPrefix prefixes every environment override, e.g. SESSIONSTATS_OUTPUT.
const EnvPrefix = "SESSIONSTATS_"

// DefaultConfig returns a configuration that reads data.txt and writes result.json.
func DefaultConfig() *Config {
	return &Config{
		Inputs:      []string{DefaultInput},
		Output:      DefaultOutput,
		Format:      DefaultFormat,
		Workers:     DefaultWorkers,
		MergePolicy: DefaultMergePolicy,
		RecordFormat: RecordFormatConfig{
			Delimiter:  DefaultDelimiter,
			UserTag:    DefaultUserTag,
			SessionTag: DefaultSessionTag,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceName,
		},
	}
}
