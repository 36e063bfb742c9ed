package testing

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/amp-labs/magicbot/statemachine"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

// TestMachine wraps Machine with a fake clock, a dispatch recorder and
// assertion helpers.
type TestMachine struct {
	*statemachine.Machine

	t          *testing.T
	Clock      *FakeClock
	Recorder   *Recorder
	assertions []Assertion
}

// Assertion represents a test assertion.
type Assertion struct {
	Name   string
	Passed bool
	Error  error
}

// NewTestMachine builds a machine over specs with every body recorded,
// time frozen at Epoch and verbose events routed to the test log.
func NewTestMachine(
	t *testing.T, name string, specs []statemachine.StateSpec, opts ...statemachine.Option,
) *TestMachine {
	t.Helper()

	clock := NewFakeClock()
	recorder := NewRecorder()

	options := []statemachine.Option{
		statemachine.WithClock(clock),
		statemachine.WithLogger(statemachine.NewSlogLogger(slogt.New(t))),
	}
	options = append(options, opts...)

	machine, err := statemachine.New(name, recorder.Instrument(specs), options...)
	require.NoError(t, err, "failed to create machine")

	return &TestMachine{
		Machine:    machine,
		t:          t,
		Clock:      clock,
		Recorder:   recorder,
		assertions: make([]Assertion, 0),
	}
}

// Tick runs one Execute and fails the test on error.
func (tm *TestMachine) Tick() {
	tm.t.Helper()

	require.NoError(tm.t, tm.Execute(), "tick failed")
}

// Step advances the clock by d and then ticks.
func (tm *TestMachine) Step(d time.Duration) {
	tm.t.Helper()

	tm.Clock.Advance(d)
	tm.Tick()
}

// EngagedTick engages the machine and ticks, the way a driver holding the
// machine engaged does every period.
func (tm *TestMachine) EngagedTick() {
	tm.t.Helper()

	require.NoError(tm.t, tm.Engage(), "engage failed")
	tm.Tick()
}

// AssertCurrentState checks the active state. An empty name means none.
func (tm *TestMachine) AssertCurrentState(expected string) {
	tm.t.Helper()

	actual := tm.CurrentState()
	tm.record(fmt.Sprintf("Current state is '%s'", expected), actual == expected,
		fmt.Errorf("%w: expected '%s', got '%s'", ErrUnexpectedState, expected, actual))
	require.Equal(tm.t, expected, actual, "current state should be '%s'", expected)
}

// AssertExecuting checks whether a run is in progress.
func (tm *TestMachine) AssertExecuting(expected bool) {
	tm.t.Helper()

	actual := tm.IsExecuting()
	tm.record(fmt.Sprintf("Executing is %t", expected), actual == expected,
		fmt.Errorf("%w: expected %t", ErrExecutingMismatch, expected))
	require.Equal(tm.t, expected, actual, "executing should be %t", expected)
}

// AssertDispatched checks the full sequence of dispatched bodies.
func (tm *TestMachine) AssertDispatched(expected ...string) {
	tm.t.Helper()

	if expected == nil {
		expected = []string{}
	}

	actual := tm.Recorder.Dispatched()
	tm.record("Dispatch sequence matches", slices.Equal(expected, actual),
		fmt.Errorf("%w: expected %v, got %v", ErrTraceMismatch, expected, actual))
	require.Equal(tm.t, expected, actual, "dispatch sequence")
}

// AssertStateVisited checks if a state was dispatched at least once.
func (tm *TestMachine) AssertStateVisited(stateName string) {
	tm.t.Helper()

	ok, err := StateWasVisited(stateName).Match(tm)
	tm.record(fmt.Sprintf("State '%s' was visited", stateName), ok, err)
	require.True(tm.t, ok, "state '%s' should have been visited", stateName)
}

// AssertTransitionTaken checks that to was entered right after from.
func (tm *TestMachine) AssertTransitionTaken(from, to string) {
	tm.t.Helper()

	ok, err := TransitionWasTaken(from, to).Match(tm)
	tm.record(fmt.Sprintf("Transition from '%s' to '%s' was taken", from, to), ok, err)
	require.True(tm.t, ok, "transition from '%s' to '%s' should have been taken", from, to)
}

// GetAssertions returns all assertions made.
func (tm *TestMachine) GetAssertions() []Assertion {
	return tm.assertions
}

func (tm *TestMachine) record(name string, passed bool, err error) {
	assertion := Assertion{
		Name:   name,
		Passed: passed,
	}

	if !passed {
		assertion.Error = err
	}

	tm.assertions = append(tm.assertions, assertion)
}
