package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTracingTest installs a tracer provider backed by an in-memory exporter.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func attrString(attrs []attribute.KeyValue, key string) string {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value.AsString()
		}
	}
	return ""
}

func TestStartCompileSpan(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	_, span := sm.StartCompileSpan(context.Background(), "adult", "json")
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "ruleexpr.compile", spans[0].Name)
	assert.Equal(t, "adult", attrString(spans[0].Attributes, "rule.name"))
	assert.Equal(t, "json", attrString(spans[0].Attributes, "rule.syntax"))
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func TestStartEvaluateSpan(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, span := sm.StartEvaluateSpan(context.Background(), "adult")
	assert.Equal(t, span.SpanContext(), trace.SpanFromContext(ctx).SpanContext())

	sm.AddSpanEvent(ctx, "parameters.bound", attribute.Int("count", 2))
	sm.EndSpanWithError(span, errors.New("invalid parameter age"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "ruleexpr.evaluate", s.Name)
	assert.Equal(t, codes.Error, s.Status.Code)
	assert.Equal(t, "invalid parameter age", s.Status.Description)

	var names []string
	for _, ev := range s.Events {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "parameters.bound")
	assert.Contains(t, names, "exception")
}

func TestEndSpanWithError_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		NewSpanManager().EndSpanWithError(nil, errors.New("x"))
	})
}
