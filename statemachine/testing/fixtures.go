// Package testing provides testing utilities for timed state machines.
package testing

import (
	"time"

	"github.com/amp-labs/magicbot/statemachine"
	"go.uber.org/atomic"
)

// Epoch is the wall time a FakeClock starts at unless told otherwise.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

// FakeClock is a manually advanced statemachine.Clock. It is safe for
// concurrent use, so a control loop goroutine can read it while a test
// advances it.
type FakeClock struct {
	base   time.Time
	offset *atomic.Duration
}

var _ statemachine.Clock = (*FakeClock)(nil)

// NewFakeClock returns a clock frozen at Epoch.
func NewFakeClock() *FakeClock {
	return NewFakeClockAt(Epoch)
}

// NewFakeClockAt returns a clock frozen at start.
func NewFakeClockAt(start time.Time) *FakeClock {
	return &FakeClock{
		base:   start,
		offset: atomic.NewDuration(0),
	}
}

// Now implements statemachine.Clock.
func (c *FakeClock) Now() time.Time {
	return c.base.Add(c.offset.Load())
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.offset.Add(d)
}

// Elapsed returns how far the clock has been advanced in total.
func (c *FakeClock) Elapsed() time.Duration {
	return c.offset.Load()
}

// TraceEntry records a single dispatch of a state body.
type TraceEntry struct {
	State       string
	Elapsed     time.Duration
	InitialCall bool
}

// Recorder collects the dispatches of the bodies it wraps.
type Recorder struct {
	entries []TraceEntry
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		entries: make([]TraceEntry, 0),
	}
}

// Wrap returns a body that records each dispatch under name and then calls
// body, which may be nil.
func (r *Recorder) Wrap(name string, body statemachine.StateFunc) statemachine.StateFunc {
	return func(elapsed time.Duration, initialCall bool) error {
		r.entries = append(r.entries, TraceEntry{
			State:       name,
			Elapsed:     elapsed,
			InitialCall: initialCall,
		})

		if body == nil {
			return nil
		}

		return body(elapsed, initialCall)
	}
}

// Instrument wraps the body of every StateSpec. The input slice is not modified.
func (r *Recorder) Instrument(specs []statemachine.StateSpec) []statemachine.StateSpec {
	out := make([]statemachine.StateSpec, len(specs))
	for i, spec := range specs {
		spec.Body = r.Wrap(spec.Name, spec.Body)
		out[i] = spec
	}

	return out
}

// Entries returns every recorded dispatch in order.
func (r *Recorder) Entries() []TraceEntry {
	out := make([]TraceEntry, len(r.entries))
	copy(out, r.entries)

	return out
}

// Dispatched returns the state name of every recorded dispatch in order.
func (r *Recorder) Dispatched() []string {
	names := make([]string, len(r.entries))
	for i, entry := range r.entries {
		names[i] = entry.State
	}

	return names
}

// Entered returns the state names of the dispatches that had initialCall set.
func (r *Recorder) Entered() []string {
	names := make([]string, 0, len(r.entries))

	for _, entry := range r.entries {
		if entry.InitialCall {
			names = append(names, entry.State)
		}
	}

	return names
}

// Reset discards all recorded dispatches.
func (r *Recorder) Reset() {
	r.entries = r.entries[:0]
}

// CommonTables provides pre-built registration tables for tests.
var CommonTables = struct { //nolint:gochecknoglobals
	Chain       func() []statemachine.StateSpec
	MustFinish  func() []statemachine.StateSpec
	WithDefault func() []statemachine.StateSpec
}{
	Chain:       chainTable,
	MustFinish:  mustFinishTable,
	WithDefault: withDefaultTable,
}

// chainTable is a single plain first state that hands over to a chain of
// two timed states.
func chainTable() []statemachine.StateSpec {
	return []statemachine.StateSpec{
		{Name: "start", Kind: statemachine.KindPlain, First: true},
		{Name: "a", Kind: statemachine.KindTimed, Duration: time.Second, Next: "b"},
		{Name: "b", Kind: statemachine.KindTimed, Duration: 500 * time.Millisecond},
	}
}

func mustFinishTable() []statemachine.StateSpec {
	return []statemachine.StateSpec{
		{Name: "drive", Kind: statemachine.KindPlain, First: true},
		{Name: "shoot", Kind: statemachine.KindTimed, Duration: time.Second, MustFinish: true},
	}
}

func withDefaultTable() []statemachine.StateSpec {
	return []statemachine.StateSpec{
		{Name: "idle", Kind: statemachine.KindDefault},
		{Name: "work", Kind: statemachine.KindPlain, First: true},
	}
}
