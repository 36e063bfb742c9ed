package testing

import (
	"testing"
	"time"

	"github.com/amp-labs/magicbot/statemachine"
	"github.com/stretchr/testify/require"
)

// Step is one tick of a scenario. Advance is applied first, then Engage,
// then the tick itself.
type Step struct {
	Advance time.Duration
	Engage  bool

	// ExpectState is the active state after the tick, "" meaning none.
	ExpectState string
	// ExpectExecuting is checked after the tick.
	ExpectExecuting bool
}

// TestScenario represents a complete tick-by-tick test of a registration table.
type TestScenario struct {
	Name     string
	Specs    []statemachine.StateSpec
	Steps    []Step
	Matchers []Matcher
}

// RunScenario executes a scenario and validates every step and matcher.
func RunScenario(t *testing.T, scenario TestScenario) {
	t.Helper()
	t.Run(scenario.Name, func(t *testing.T) {
		t.Parallel()

		machine := NewTestMachine(t, scenario.Name, scenario.Specs)

		for i, step := range scenario.Steps {
			machine.Clock.Advance(step.Advance)

			if step.Engage {
				require.NoError(t, machine.Engage(), "step %d: engage", i)
			}

			require.NoError(t, machine.Execute(), "step %d: execute", i)
			require.Equal(t, step.ExpectState, machine.CurrentState(), "step %d: current state", i)
			require.Equal(t, step.ExpectExecuting, machine.IsExecuting(), "step %d: executing", i)
		}

		for _, matcher := range scenario.Matchers {
			ok, err := matcher.Match(machine)
			if !ok {
				t.Errorf("Matcher failed: %s - %v", matcher.Description(), err)
			}
		}
	})
}

// ChainScenario engages the chain table for one tick and lets the timed
// states run out on their own.
func ChainScenario() TestScenario {
	return TestScenario{
		Name:  "Chain",
		Specs: CommonTables.Chain(),
		Steps: []Step{
			{Engage: true, ExpectState: "start", ExpectExecuting: true},
		},
		Matchers: []Matcher{
			DispatchedTimes("start", 1),
		},
	}
}

// MustFinishScenario withdraws engagement while a must-finish state runs.
func MustFinishScenario() TestScenario {
	return TestScenario{
		Name:  "Must Finish",
		Specs: CommonTables.MustFinish(),
		Steps: []Step{
			{Engage: true, ExpectState: "drive", ExpectExecuting: true},
			{ExpectState: "", ExpectExecuting: false},
		},
		Matchers: []Matcher{
			StateWasVisited("drive"),
			DispatchedTimes("shoot", 0),
		},
	}
}

// DefaultScenario shows the default state taking over once a run ends.
func DefaultScenario() TestScenario {
	return TestScenario{
		Name:  "Default",
		Specs: CommonTables.WithDefault(),
		Steps: []Step{
			{ExpectState: "idle", ExpectExecuting: false},
			{Engage: true, ExpectState: "work", ExpectExecuting: true},
			{ExpectState: "idle", ExpectExecuting: true},
		},
		Matchers: []Matcher{
			TransitionWasTaken("idle", "work"),
			TransitionWasTaken("work", "idle"),
		},
	}
}
