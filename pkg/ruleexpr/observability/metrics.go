package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records rule engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCompile records a parse of rule source with its syntax, latency and error status.
	RecordCompile(ctx context.Context, syntax string, duration time.Duration, err error)

	// RecordEvaluation records one evaluation of a named rule.
	RecordEvaluation(ctx context.Context, rule string, duration time.Duration, err error)

	// RecordRuleSetSize records the number of compiled rules held by an engine.
	RecordRuleSetSize(ctx context.Context, size int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	compiles       metric.Int64Counter
	compileErrors  metric.Int64Counter
	compileLatency metric.Float64Histogram
	evals          metric.Int64Counter
	evalErrors     metric.Int64Counter
	evalLatency    metric.Float64Histogram
	ruleSetSize    metric.Int64Gauge
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("ruleexpr")

	compiles, err := meter.Int64Counter("ruleexpr.compile.count",
		metric.WithDescription("Number of rule compilations"),
	)
	if err != nil {
		return nil, err
	}

	compileErrors, err := meter.Int64Counter("ruleexpr.compile.errors",
		metric.WithDescription("Number of rule compilations that failed to parse"),
	)
	if err != nil {
		return nil, err
	}

	compileLatency, err := meter.Float64Histogram("ruleexpr.compile.latency_ms",
		metric.WithDescription("Rule compilation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evals, err := meter.Int64Counter("ruleexpr.eval.count",
		metric.WithDescription("Number of rule evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("ruleexpr.eval.errors",
		metric.WithDescription("Number of rule evaluations that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("ruleexpr.eval.latency_ms",
		metric.WithDescription("Rule evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	ruleSetSize, err := meter.Int64Gauge("ruleexpr.ruleset.size",
		metric.WithDescription("Number of compiled rules held by the engine"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		compiles:       compiles,
		compileErrors:  compileErrors,
		compileLatency: compileLatency,
		evals:          evals,
		evalErrors:     evalErrors,
		evalLatency:    evalLatency,
		ruleSetSize:    ruleSetSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordCompile records a compilation.
func (m *otelMetrics) RecordCompile(ctx context.Context, syntax string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("syntax", syntax))
	m.compiles.Add(ctx, 1, attrs)
	m.compileLatency.Record(ctx, Milliseconds(duration), attrs)
	if err != nil {
		m.compileErrors.Add(ctx, 1, attrs)
	}
}

// RecordEvaluation records an evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, rule string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("rule", rule))
	m.evals.Add(ctx, 1, attrs)
	m.evalLatency.Record(ctx, Milliseconds(duration), attrs)
	if err != nil {
		m.evalErrors.Add(ctx, 1, attrs)
	}
}

// RecordRuleSetSize records the rule count.
func (m *otelMetrics) RecordRuleSetSize(ctx context.Context, size int) {
	m.ruleSetSize.Record(ctx, int64(size))
}
