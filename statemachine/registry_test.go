package statemachine_test

import (
	"testing"
	"time"

	"github.com/amp-labs/magicbot/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRegistryErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		specs   []statemachine.StateSpec
		wantErr error
		state   string
	}{
		{
			name:    "timed state without duration",
			specs:   []statemachine.StateSpec{{Name: "tmp", Kind: statemachine.KindTimed, First: true}},
			wantErr: statemachine.ErrInvalidDuration,
			state:   "tmp",
		},
		{
			name: "timed state with negative duration",
			specs: []statemachine.StateSpec{
				{Name: "tmp", Kind: statemachine.KindTimed, Duration: -time.Second, First: true},
			},
			wantErr: statemachine.ErrInvalidDuration,
			state:   "tmp",
		},
		{
			name:    "no start state",
			specs:   nil,
			wantErr: statemachine.ErrNoFirstState,
		},
		{
			name:    "no state marked first",
			specs:   []statemachine.StateSpec{{Name: "a"}, {Name: "b"}},
			wantErr: statemachine.ErrNoFirstState,
		},
		{
			name:    "multiple first states",
			specs:   []statemachine.StateSpec{{Name: "tmp1", First: true}, {Name: "tmp2", First: true}},
			wantErr: statemachine.ErrMultipleFirstStates,
			state:   "tmp2",
		},
		{
			name: "multiple default states",
			specs: []statemachine.StateSpec{
				{Name: "tmp1", First: true},
				{Name: "tmp2", Kind: statemachine.KindDefault},
				{Name: "tmp3", Kind: statemachine.KindDefault},
			},
			wantErr: statemachine.ErrMultipleDefaultStates,
			state:   "tmp3",
		},
		{
			name: "default state marked first",
			specs: []statemachine.StateSpec{
				{Name: "idle", Kind: statemachine.KindDefault, First: true},
			},
			wantErr: statemachine.ErrDefaultStateFirst,
			state:   "idle",
		},
		{
			name:    "duplicate names",
			specs:   []statemachine.StateSpec{{Name: "a", First: true}, {Name: "a"}},
			wantErr: statemachine.ErrDuplicateState,
			state:   "a",
		},
		{
			name:    "missing name",
			specs:   []statemachine.StateSpec{{First: true}},
			wantErr: statemachine.ErrStateNameRequired,
		},
		{
			name:    "unknown kind",
			specs:   []statemachine.StateSpec{{Name: "a", Kind: statemachine.Kind(42), First: true}},
			wantErr: statemachine.ErrUnknownKind,
			state:   "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg, err := statemachine.BuildRegistry(tt.specs)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, reg)

			if tt.state != "" {
				var stateErr *statemachine.StateError
				require.ErrorAs(t, err, &stateErr)
				assert.Equal(t, tt.state, stateErr.State)
			}

			_, err = statemachine.New("broken", tt.specs)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuildRegistryRoundTrip(t *testing.T) {
	t.Parallel()

	specs := []statemachine.StateSpec{
		{Name: "idle", Kind: statemachine.KindDefault},
		{Name: "drive", Kind: statemachine.KindTimed, Duration: 1500 * time.Millisecond, Next: "shoot", First: true},
		{Name: "shoot", Kind: statemachine.KindTimed, Duration: time.Second, MustFinish: true},
		{Name: "wait"},
	}

	reg, err := statemachine.BuildRegistry(specs)
	require.NoError(t, err)

	assert.Equal(t, "drive", reg.First())

	defaultName, ok := reg.Default()
	assert.True(t, ok)
	assert.Equal(t, "idle", defaultName)

	assert.Equal(t, []string{"idle", "drive", "shoot", "wait"}, reg.Names())
	assert.Equal(t, 4, reg.Len())

	for _, spec := range specs {
		desc, found := reg.Lookup(spec.Name)
		require.True(t, found, spec.Name)

		assert.Equal(t, spec.Kind, desc.Kind())
		assert.Equal(t, spec.First, desc.IsFirst())
		assert.Equal(t, spec.MustFinish, desc.MustFinish())
		assert.Equal(t, spec.Kind == statemachine.KindDefault, desc.IsDefault())

		next, hasNext := desc.Next()
		assert.Equal(t, spec.Next, next)
		assert.Equal(t, spec.Next != "", hasNext)

		if spec.Kind == statemachine.KindTimed {
			assert.Equal(t, spec.Duration, desc.Duration())
		} else {
			assert.Equal(t, statemachine.Forever, desc.Duration())
		}
	}

	_, found := reg.Lookup("missing")
	assert.False(t, found)
}

func TestBuildRegistryWithoutDefault(t *testing.T) {
	t.Parallel()

	reg, err := statemachine.BuildRegistry([]statemachine.StateSpec{{Name: "only", First: true}})
	require.NoError(t, err)

	_, ok := reg.Default()
	assert.False(t, ok)
}

func TestBuildRegistryAllowsDanglingNext(t *testing.T) {
	t.Parallel()

	_, err := statemachine.BuildRegistry([]statemachine.StateSpec{
		{Name: "a", Kind: statemachine.KindTimed, Duration: time.Second, Next: "nowhere", First: true},
	})
	require.NoError(t, err)
}

func TestKindText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    statemachine.Kind
		wantErr bool
	}{
		{"plain", statemachine.KindPlain, false},
		{"Timed", statemachine.KindTimed, false},
		{" default ", statemachine.KindDefault, false},
		{"", statemachine.KindPlain, false},
		{"sometimes", statemachine.KindPlain, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			var kind statemachine.Kind

			err := kind.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, statemachine.ErrUnknownKind)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}

	_, err := statemachine.Kind(9).MarshalText()
	require.ErrorIs(t, err, statemachine.ErrUnknownKind)
	assert.Equal(t, "kind(9)", statemachine.Kind(9).String())
}
