package statemachine_test

import (
	"testing"
	"time"

	"github.com/amp-labs/magicbot/statemachine"
	smtesting "github.com/amp-labs/magicbot/statemachine/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutonomousRunsOnce(t *testing.T) {
	t.Parallel()

	var sm *smtesting.TestMachine

	specs := []statemachine.StateSpec{
		{Name: "drive", Kind: statemachine.KindTimed, Duration: time.Second, Next: "shoot", First: true},
		{Name: "shoot", Kind: statemachine.KindTimed, Duration: 500 * time.Millisecond, Next: "finish"},
		{Name: "finish", Body: func(time.Duration, bool) error {
			sm.Done()

			return nil
		}},
	}

	sm = smtesting.NewTestMachine(t, "auto", specs)

	hookCalls := 0
	auto := statemachine.NewAutonomous(sm.Machine, statemachine.WithPeriodicHook(func() error {
		hookCalls++

		return nil
	}))

	// not enabled yet
	require.NoError(t, auto.Periodic())
	sm.AssertDispatched()

	auto.OnEnabled()
	assert.True(t, auto.Running())

	for range 200 {
		sm.Clock.Advance(20 * time.Millisecond)
		require.NoError(t, auto.Periodic())
	}

	// once finish calls Done the routine is not engaged again
	assert.False(t, auto.Running())
	sm.AssertExecuting(false)
	sm.AssertTransitionTaken("drive", "shoot")
	assert.Equal(t, []string{"drive", "shoot", "finish"}, sm.Recorder.Entered())
	assert.Len(t, sm.Recorder.Dispatched(), hookCalls)

	auto.OnEnabled()
	require.NoError(t, auto.Periodic())
	assert.True(t, auto.Running())
	sm.AssertCurrentState("drive")

	auto.OnDisabled()
	assert.False(t, auto.Running())
	sm.AssertExecuting(false)
	sm.AssertCurrentState("")
}

func TestAutonomousKeepsRunningAfterError(t *testing.T) {
	t.Parallel()

	specs := []statemachine.StateSpec{
		{Name: "broken", First: true, Body: func(time.Duration, bool) error {
			return errBodyFailed
		}},
	}

	sm := smtesting.NewTestMachine(t, "auto-broken", specs)
	auto := statemachine.NewAutonomous(sm.Machine)

	auto.OnEnabled()

	err := auto.Periodic()
	require.ErrorIs(t, err, errBodyFailed)

	// the failing state stays active while engaged
	assert.True(t, auto.Running())

	auto.OnDisabled()
	assert.False(t, auto.Running())
	assert.Same(t, sm.Machine, auto.Machine())
}
