package analyzer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/sessionstats/internal/logging"
	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// Analyzer runs the full pipeline: parse, join, aggregate, report.
type Analyzer struct {
	format  parser.RecordFormat
	workers int
	policy  MergePolicy

	instrumented bool
	instrument   []InstrumentOption
	builder      ReportBuilder
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithRecordFormat sets the line delimiter and record kind tags.
func WithRecordFormat(f parser.RecordFormat) AnalyzerOption {
	return func(a *Analyzer) {
		a.format = f
	}
}

// WithWorkers spreads per-user aggregation over n goroutines.
// Values below 2 keep aggregation sequential. Output does not depend on n.
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMergePolicy sets how display-name collisions are resolved.
func WithMergePolicy(p MergePolicy) AnalyzerOption {
	return func(a *Analyzer) {
		a.policy = p
	}
}

// WithInstrumentation wraps report building with tracing and metrics.
func WithInstrumentation(opts ...InstrumentOption) AnalyzerOption {
	return func(a *Analyzer) {
		a.instrumented = true
		a.instrument = append(a.instrument, opts...)
	}
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		format:  parser.DefaultRecordFormat(),
		workers: 1,
		policy:  MergeOverwrite,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.builder = a
	if a.instrumented {
		b, err := Instrument(a, a.instrument...)
		if err != nil {
			return nil, fmt.Errorf("instrumenting report builder: %w", err)
		}
		a.builder = b
	}

	return a, nil
}

// Analyze reads every line from source and returns the report.
func (a *Analyzer) Analyze(ctx context.Context, source parser.LineSource) (*Report, error) {
	logger := logging.FromContext(ctx)

	records, err := parser.NewRecordParser(a.format).Parse(ctx, source)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "parsed input",
		"lines", records.LinesRead,
		"users", len(records.Users),
		"sessions", len(records.Sessions),
		"dropped", records.LinesDropped,
	)

	return a.builder.Build(ctx, records)
}

// Build joins, aggregates and reports already-parsed records.
func (a *Analyzer) Build(ctx context.Context, records *parser.Records) (*Report, error) {
	users := AssembleUsers(records.Users, records.Sessions)
	browsers := CollectBrowsers(records.Sessions)

	stats, err := aggregateAll(ctx, users, a.workers)
	if err != nil {
		return nil, fmt.Errorf("aggregating user stats: %w", err)
	}

	report, err := composeReport(users, stats, records.Sessions, browsers, a.policy)
	if err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}

	logging.FromContext(ctx).DebugContext(ctx, "built report",
		"users", report.TotalUsers,
		"entries", report.UsersStats.Len(),
		"browsers", report.UniqueBrowsersCount,
	)

	return report, nil
}

// aggregateAll computes stats for every user. With more than one worker the
// users are split into contiguous chunks; each result lands at its user's index.
func aggregateAll(ctx context.Context, users []User, workers int) ([]UserStats, error) {
	stats := make([]UserStats, len(users))

	if workers < 2 || len(users) < 2 {
		for i, u := range users {
			stats[i] = AggregateUser(u)
		}
		return stats, nil
	}

	chunk := (len(users) + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(users); start += chunk {
		end := min(start+chunk, len(users))
		g.Go(func() error {
			for i := start; i < end; i++ {
				stats[i] = AggregateUser(users[i])
			}
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
