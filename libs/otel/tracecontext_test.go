package otelx

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceContextStringsRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:     trace.SpanID{0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	traceparent, tracestate := TraceContextStrings(ctx)
	if traceparent == "" {
		t.Fatal("expected a traceparent for a valid span context")
	}

	restored := trace.SpanContextFromContext(ContextWithTraceContext(context.Background(), traceparent, tracestate))
	if restored.TraceID() != sc.TraceID() {
		t.Fatalf("trace id = %s, want %s", restored.TraceID(), sc.TraceID())
	}
	if restored.SpanID() != sc.SpanID() {
		t.Fatalf("span id = %s, want %s", restored.SpanID(), sc.SpanID())
	}
	if !restored.IsSampled() {
		t.Fatal("sampled flag lost in round trip")
	}
}

func TestTraceContextStringsEmptyWithoutSpan(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceparent, tracestate := TraceContextStrings(context.Background())
	if traceparent != "" || tracestate != "" {
		t.Fatalf("got traceparent=%q tracestate=%q, want empty for no span", traceparent, tracestate)
	}

	ctx := context.Background()
	if got := ContextWithTraceContext(ctx, "", ""); got != ctx {
		t.Fatal("empty trace context must return the context unchanged")
	}
}
