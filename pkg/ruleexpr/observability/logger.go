// Package observability provides logging, metrics, and tracing hooks for
// compiling and evaluating rules.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogCompile logs a successfully compiled rule.
func LogCompile(logger *slog.Logger, rule, syntax string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("rule compiled",
		slog.String("rule", rule),
		slog.String("syntax", syntax),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCompileError logs a rule that failed to parse.
func LogCompileError(logger *slog.Logger, rule, syntax string, err error) {
	if logger == nil {
		return
	}
	logger.Error("rule compile failed",
		slog.String("rule", rule),
		slog.String("syntax", syntax),
		slog.String("error", err.Error()),
	)
}

// LogEvaluate logs a completed evaluation.
func LogEvaluate(logger *slog.Logger, rule string, result string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("rule evaluated",
		slog.String("rule", rule),
		slog.String("result", result),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvaluateError logs a failed evaluation. Evaluation errors come from
// caller data (missing parameters, mismatched types), so they log at Warn.
func LogEvaluateError(logger *slog.Logger, rule string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("rule evaluation failed",
		slog.String("rule", rule),
		slog.String("error", err.Error()),
	)
}

// LogRuleSetLoaded logs how many rules were compiled from a source.
func LogRuleSetLoaded(logger *slog.Logger, source string, count int) {
	if logger == nil {
		return
	}
	logger.Info("rule set loaded",
		slog.String("source", source),
		slog.Int("rules", count),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

// Milliseconds converts d to fractional milliseconds for log fields.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// LogSlowEvaluation logs an evaluation that took longer than thresholdMs.
func LogSlowEvaluation(logger *slog.Logger, rule string, durationMs, thresholdMs float64) {
	if logger == nil {
		return
	}
	logger.Warn("slow rule evaluation",
		slog.String("rule", rule),
		slog.Float64("duration_ms", durationMs),
		slog.Float64("threshold_ms", thresholdMs),
	)
}
