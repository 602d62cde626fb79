// Package output renders session reports and writes them to their destination.
package output

import (
	"time"

	"github.com/ccollicutt/sessionstats/pkg/analyzer"
)

// Report is a finished analysis together with details about the run.
type Report struct {
	// Stats is the aggregate written to the report file.
	Stats *analyzer.Report

	// Metadata describes the run. It is never part of the JSON report.
	Metadata Metadata
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// RunID identifies the run in logs and webhook payloads.
	RunID string

	// ConfigFile is the configuration file used, if any.
	ConfigFile string

	// Sources lists the inputs that were read, in order.
	Sources []string

	// AnalyzedAt is when the analysis finished.
	AnalyzedAt time.Time

	// Duration is how long the analysis took.
	Duration time.Duration
}

// NewReport wraps an analyzer report with run metadata.
func NewReport(stats *analyzer.Report, meta Metadata) *Report {
	return &Report{Stats: stats, Metadata: meta}
}

// HasSessions returns true if the underlying report counted any session.
func (r *Report) HasSessions() bool {
	return r.Stats != nil && r.Stats.HasSessions()
}
