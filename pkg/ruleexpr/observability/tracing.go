package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartCompileSpan starts a span for parsing a rule.
	StartCompileSpan(ctx context.Context, rule, syntax string) (context.Context, trace.Span)

	// StartEvaluateSpan starts a span for evaluating a rule.
	StartEvaluateSpan(ctx context.Context, rule string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
// The tracer is looked up from the global provider on every span so that a
// provider installed after construction is honored.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before starting spans:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func tracer() trace.Tracer {
	return otel.Tracer("ruleexpr")
}

// StartCompileSpan starts a span for parsing a rule.
func (m *otelSpanManager) StartCompileSpan(ctx context.Context, rule, syntax string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "ruleexpr.compile",
		trace.WithAttributes(
			attribute.String("rule.name", rule),
			attribute.String("rule.syntax", syntax),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartEvaluateSpan starts a span for evaluating a rule.
func (m *otelSpanManager) StartEvaluateSpan(ctx context.Context, rule string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "ruleexpr.evaluate",
		trace.WithAttributes(
			attribute.String("rule.name", rule),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
