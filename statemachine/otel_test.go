package statemachine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var errStateBody = errors.New("state body failed")

// setupTestTracer creates a tracer backed by an in-memory exporter.
func setupTestTracer(t *testing.T) (*tracetest.InMemoryExporter, Option) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
	)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return exporter, WithTracer(tp.Tracer(tracerName))
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}

	return attribute.Value{}, false
}

func TestRunSpan(t *testing.T) {
	t.Parallel()

	exporter, tracerOpt := setupTestTracer(t)

	specs := []StateSpec{
		{Name: "a", Kind: KindTimed, Duration: time.Second, Next: "b", First: true},
		{Name: "b", MustFinish: true},
	}

	machine, clock := newTestMachine(t, "span-run", specs, tracerOpt)

	require.NoError(t, machine.Engage())
	require.NoError(t, machine.Execute())

	// the span stays open across ticks
	assert.Empty(t, exporter.GetSpans())

	clock.advance(1500 * time.Millisecond)
	require.NoError(t, machine.Engage())
	require.NoError(t, machine.Execute())

	clock.advance(500 * time.Millisecond)
	machine.Done()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "statemachine.run", span.Name)

	value, ok := attrValue(span.Attributes, "machine")
	require.True(t, ok)
	assert.Equal(t, "span-run", value.AsString())

	runID, ok := attrValue(span.Attributes, "run_id")
	require.True(t, ok)
	assert.NotEmpty(t, runID.AsString())

	duration, ok := attrValue(span.Attributes, "duration_ms")
	require.True(t, ok)
	assert.Equal(t, int64(2000), duration.AsInt64())

	names := make([]string, 0, len(span.Events))
	for _, event := range span.Events {
		names = append(names, event.Name)
	}

	assert.Equal(t, []string{"state.entered", "state.expired", "state.entered"}, names)

	entered, ok := attrValue(span.Events[2].Attributes, "state")
	require.True(t, ok)
	assert.Equal(t, "b", entered.AsString())

	elapsed, ok := attrValue(span.Events[2].Attributes, "run_elapsed_ms")
	require.True(t, ok)
	assert.Equal(t, int64(1500), elapsed.AsInt64())
}

func TestRunSpanRecordsErrors(t *testing.T) {
	t.Parallel()

	exporter, tracerOpt := setupTestTracer(t)

	specs := []StateSpec{
		{Name: "broken", First: true, Body: func(time.Duration, bool) error {
			return errStateBody
		}},
	}

	machine, _ := newTestMachine(t, "span-error", specs, tracerOpt)

	require.NoError(t, machine.Engage())
	require.ErrorIs(t, machine.Execute(), errStateBody)

	machine.OnDisabled()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestNoSpanWithoutRun(t *testing.T) {
	t.Parallel()

	exporter, tracerOpt := setupTestTracer(t)

	specs := []StateSpec{
		{Name: "idle", Kind: KindDefault},
		{Name: "work", First: true},
	}

	machine, _ := newTestMachine(t, "span-idle", specs, tracerOpt)

	for range 3 {
		require.NoError(t, machine.Execute())
	}

	machine.Done()

	assert.Empty(t, exporter.GetSpans())
	assert.Equal(t, "", machine.CurrentState())
}
