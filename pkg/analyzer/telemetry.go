package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ccollicutt/sessionstats/pkg/parser"
)

const instrumentationName = "sessionstats/analyzer"

type builderMetricsCollection struct {
	buildCount    metric.Int64Counter
	buildDuration metric.Float64Histogram
	usersCount    metric.Int64Counter
	sessionsCount metric.Int64Counter
}

func setupBuilderMetrics(meter metric.Meter) (builderMetricsCollection, error) {
	buildCount, err := meter.Int64Counter(
		"analyzer/build_count",
		metric.WithDescription("Number of reports built"),
	)
	if err != nil {
		return builderMetricsCollection{}, fmt.Errorf("failed to create build count metric: %w", err)
	}

	buildDuration, err := meter.Float64Histogram(
		"analyzer/build_duration_seconds",
		metric.WithDescription("Time spent joining, aggregating and composing a report"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return builderMetricsCollection{}, fmt.Errorf("failed to create build duration metric: %w", err)
	}

	usersCount, err := meter.Int64Counter(
		"analyzer/users_count",
		metric.WithDescription("User records aggregated"),
	)
	if err != nil {
		return builderMetricsCollection{}, fmt.Errorf("failed to create users count metric: %w", err)
	}

	sessionsCount, err := meter.Int64Counter(
		"analyzer/sessions_count",
		metric.WithDescription("Session records aggregated"),
	)
	if err != nil {
		return builderMetricsCollection{}, fmt.Errorf("failed to create sessions count metric: %w", err)
	}

	return builderMetricsCollection{
		buildCount:    buildCount,
		buildDuration: buildDuration,
		usersCount:    usersCount,
		sessionsCount: sessionsCount,
	}, nil
}

type instrumentConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// InstrumentOption configures Instrument.
type InstrumentOption func(*instrumentConfig)

// WithTracerProvider uses tp instead of the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) InstrumentOption {
	return func(c *instrumentConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider uses mp instead of the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) InstrumentOption {
	return func(c *instrumentConfig) {
		c.meterProvider = mp
	}
}

type instrumentedBuilder struct {
	next    ReportBuilder
	tracer  trace.Tracer
	metrics builderMetricsCollection
}

// Instrument wraps next so every Build call is traced and measured.
// Without options the global otel providers are used, which are no-ops
// unless an SDK has been installed.
func Instrument(next ReportBuilder, opts ...InstrumentOption) (ReportBuilder, error) {
	cfg := instrumentConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	metrics, err := setupBuilderMetrics(cfg.meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &instrumentedBuilder{
		next:    next,
		tracer:  cfg.tracerProvider.Tracer(instrumentationName),
		metrics: metrics,
	}, nil
}

func (b *instrumentedBuilder) Build(ctx context.Context, records *parser.Records) (*Report, error) {
	ctx, span := b.tracer.Start(ctx, "Analyzer.Build")
	defer span.End()

	span.SetAttributes(
		attribute.Int("records.users", len(records.Users)),
		attribute.Int("records.sessions", len(records.Sessions)),
		attribute.Int("records.dropped", records.LinesDropped),
	)

	start := time.Now()
	report, err := b.next.Build(ctx, records)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.Int("report.entries", report.UsersStats.Len()),
			attribute.Int("report.unique_browsers", report.UniqueBrowsersCount),
		)
		b.metrics.usersCount.Add(ctx, int64(report.TotalUsers))
		b.metrics.sessionsCount.Add(ctx, int64(report.TotalSessions))
	}

	statusOption := metric.WithAttributes(attribute.String("status", status))
	b.metrics.buildCount.Add(ctx, 1, statusOption)
	b.metrics.buildDuration.Record(ctx, elapsed.Seconds(), statusOption)

	return report, err
}
