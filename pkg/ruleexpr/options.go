package ruleexpr

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/config"
	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/expr"
	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/observability"
	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/ruleset"
)

// engineConfig holds configuration for an Engine.
type engineConfig struct {
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
	maxDepth      int
	store         ruleset.Store
	slowThreshold time.Duration
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() engineConfig {
	return engineConfig{
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		maxDepth: expr.DefaultMaxDepth,
	}
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithLogger sets the logger for compile and evaluation events.
// Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics.
//
// Example:
//
//	engine := ruleexpr.NewEngine(ruleexpr.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *engineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the span manager used for compile and evaluate spans.
// Default: observability.NoopSpanManager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *engineConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithMaxDepth sets the nesting limit for parsing and evaluation.
// Default: expr.DefaultMaxDepth. Non-positive values are ignored.
func WithMaxDepth(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithStore persists rules added to the engine and enables Load.
// The engine closes the store on Close.
func WithStore(store ruleset.Store) Option {
	return func(c *engineConfig) {
		c.store = store
	}
}

// WithSlowEvalThreshold logs evaluations slower than d at warn level.
// Default: 0 (disabled).
func WithSlowEvalThreshold(d time.Duration) Option {
	return func(c *engineConfig) {
		if d >= 0 {
			c.slowThreshold = d
		}
	}
}

// FromSettings applies the depth, threshold, metrics and tracing parts of s.
// It does not open a store; use Open for that.
func FromSettings(s config.Settings) Option {
	return func(c *engineConfig) {
		WithMaxDepth(s.MaxDepth)(c)
		WithSlowEvalThreshold(s.SlowEvalThreshold)(c)
		if s.Metrics {
			c.metrics = observability.NewMetricsRecorder()
		}
		if s.Tracing {
			c.spans = observability.NewSpanManager()
		}
	}
}
