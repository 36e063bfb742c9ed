package statemachine_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/amp-labs/magicbot/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chargeTable = `name: charge
states:
  - name: spin_up
    kind: timed
    duration: 500ms
    next: drive
    first: true
  - name: drive
    kind: timed
    duration: 1.5s
    next: fire
  - name: fire
    kind: timed
    duration: 1s
    mustFinish: true
  - name: wait
    kind: default
`

func noop(time.Duration, bool) error { return nil }

func TestLoadTableFromBytes(t *testing.T) {
	t.Parallel()

	table, err := statemachine.LoadTableFromBytes([]byte(chargeTable))
	require.NoError(t, err)

	assert.Equal(t, "charge", table.Name)
	require.Len(t, table.States, 4)

	assert.Equal(t, statemachine.KindTimed, table.States[0].Kind)
	assert.Equal(t, 500*time.Millisecond, table.States[0].Duration)
	assert.True(t, table.States[0].First)
	assert.Equal(t, 1500*time.Millisecond, table.States[1].Duration)
	assert.True(t, table.States[2].MustFinish)
	assert.Equal(t, statemachine.KindDefault, table.States[3].Kind)

	reg, err := statemachine.BuildRegistry(table.Specs())
	require.NoError(t, err)
	assert.Equal(t, "spin_up", reg.First())
}

func TestLoadTableErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()

		_, err := statemachine.LoadTableFromBytes([]byte("states: []\n"))
		require.ErrorIs(t, err, statemachine.ErrTableNameRequired)
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()

		_, err := statemachine.LoadTableFromBytes([]byte("name: x\nstates:\n  - name: a\n    kind: weird\n"))
		require.ErrorIs(t, err, statemachine.ErrUnknownKind)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		_, err := statemachine.LoadTableFromBytes([]byte("name: [unterminated"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := statemachine.LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadTableFromFileAndFS(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "charge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(chargeTable), 0o600))

	fromFile, err := statemachine.LoadTable(path)
	require.NoError(t, err)

	fsys := fstest.MapFS{"tables/charge.yaml": {Data: []byte(chargeTable)}}

	fromFS, err := statemachine.LoadTableFromFS(fsys, "tables/charge.yaml")
	require.NoError(t, err)

	assert.Equal(t, fromFile, fromFS)
}

func TestTableBind(t *testing.T) {
	t.Parallel()

	table, err := statemachine.LoadTableFromBytes([]byte(chargeTable))
	require.NoError(t, err)

	bodies := map[string]statemachine.StateFunc{
		"spin_up": noop,
		"drive":   noop,
		"fire":    noop,
		"wait":    noop,
	}

	machine, err := table.Build(bodies)
	require.NoError(t, err)
	assert.Equal(t, "charge", machine.Name())

	t.Run("missing body", func(t *testing.T) {
		t.Parallel()

		_, err := table.Bind(map[string]statemachine.StateFunc{"spin_up": noop})
		require.ErrorIs(t, err, statemachine.ErrMissingBody)

		var stateErr *statemachine.StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "drive", stateErr.State)
	})

	t.Run("undeclared body", func(t *testing.T) {
		t.Parallel()

		extra := map[string]statemachine.StateFunc{"bogus": noop}
		for name, body := range bodies {
			extra[name] = body
		}

		_, err := table.Bind(extra)
		require.ErrorIs(t, err, statemachine.ErrUnknownBody)
	})
}

func TestTableMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	table, err := statemachine.LoadTableFromBytes([]byte(chargeTable))
	require.NoError(t, err)

	data, err := table.Marshal()
	require.NoError(t, err)

	again, err := statemachine.LoadTableFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, table, again)
}

func TestBuilderMatchesTable(t *testing.T) {
	t.Parallel()

	table, err := statemachine.LoadTableFromBytes([]byte(chargeTable))
	require.NoError(t, err)

	built := statemachine.NewBuilder("charge").
		Timed("spin_up", 500*time.Millisecond, nil, statemachine.Next("drive"), statemachine.First()).
		Timed("drive", 1500*time.Millisecond, nil, statemachine.Next("fire")).
		Timed("fire", time.Second, nil, statemachine.MustFinish()).
		Default("wait", nil).
		Specs()

	assert.Equal(t, table.Specs(), built)

	machine, err := statemachine.NewBuilder("charge").
		State("only", noop, statemachine.First()).
		Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, machine.Registry().Names())
}
