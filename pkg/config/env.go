package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envOverrides mirrors the settings that may come from the environment.
// Nil pointers and empty values leave the loaded configuration untouched.
type envOverrides struct {
	Inputs           []string `env:"INPUTS" envSeparator:","`
	Output           string   `env:"OUTPUT"`
	Format           string   `env:"FORMAT"`
	Workers          *int     `env:"WORKERS"`
	MergePolicy      string   `env:"MERGE_POLICY"`
	LogLevel         string   `env:"LOG_LEVEL"`
	LogFormat        string   `env:"LOG_FORMAT"`
	TelemetryEnabled *bool    `env:"TELEMETRY_ENABLED"`
}

// applyEnvironmentOverrides loads an optional .env file and applies
// SESSIONSTATS_* variables on top of the config.
func (c *Config) applyEnvironmentOverrides() error {
	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env file: %w", err)
	}

	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	if len(o.Inputs) > 0 {
		c.Inputs = o.Inputs
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Format != "" {
		c.Format = OutputFormat(o.Format)
	}
	if o.Workers != nil {
		c.Workers = *o.Workers
	}
	if o.MergePolicy != "" {
		c.MergePolicy = o.MergePolicy
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Log.Format = o.LogFormat
	}
	if o.TelemetryEnabled != nil {
		c.Telemetry.Enabled = *o.TelemetryEnabled
	}

	return nil
}
