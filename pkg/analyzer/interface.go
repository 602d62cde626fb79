package analyzer

import (
	"context"

	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// ReportBuilder turns parsed records into a report.
// Analyzer implements it; Instrument wraps one with tracing and metrics.
type ReportBuilder interface {
	Build(ctx context.Context, records *parser.Records) (*Report, error)
}
