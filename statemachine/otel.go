package statemachine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "statemachine"

func defaultTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// startRunSpan creates the span that covers one engaged run of a machine.
// The machine ends it from done.
//
//nolint:spancheck // Span lifecycle managed by the machine across ticks
func startRunSpan(tracer trace.Tracer, machine, runID string) trace.Span {
	_, span := tracer.Start(context.Background(), "statemachine.run",
		trace.WithAttributes(
			attribute.String("machine", machine),
			attribute.String("run_id", runID),
		),
	)

	return span
}

func recordStateEntered(span trace.Span, desc Descriptor, runElapsed time.Duration) {
	if span == nil {
		return
	}

	span.AddEvent("state.entered", trace.WithAttributes(
		attribute.String("state", desc.name),
		attribute.String("kind", desc.kind.String()),
		attribute.Bool("must_finish", desc.mustFinish),
		attribute.Int64("run_elapsed_ms", runElapsed.Milliseconds()),
	))
}

func recordStateExpired(span trace.Span, desc Descriptor) {
	if span == nil {
		return
	}

	span.AddEvent("state.expired", trace.WithAttributes(
		attribute.String("state", desc.name),
	))
}

func recordStateError(span trace.Span, state string, err error) {
	if span == nil {
		return
	}

	span.RecordError(err, trace.WithAttributes(attribute.String("state", state)))
	span.SetStatus(codes.Error, err.Error())
}

func endRunSpan(span trace.Span, runElapsed time.Duration) {
	if span == nil {
		return
	}

	span.SetAttributes(attribute.Int64("duration_ms", runElapsed.Milliseconds()))
	span.End()
}
