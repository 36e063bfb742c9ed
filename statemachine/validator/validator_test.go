package validator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amp-labs/magicbot/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes[T ValidationError | ValidationWarning](issues []T) []string {
	out := make([]string, 0, len(issues))

	for _, issue := range issues {
		switch v := any(issue).(type) {
		case ValidationError:
			out = append(out, v.Code)
		case ValidationWarning:
			out = append(out, v.Code)
		}
	}

	return out
}

func validTable() *statemachine.Table {
	return &statemachine.Table{
		Name: "valid",
		States: []statemachine.StateConfig{
			{Name: "spin_up", Kind: statemachine.KindTimed, Duration: time.Second, Next: "fire", First: true},
			{Name: "fire", Kind: statemachine.KindTimed, Duration: time.Second, MustFinish: true},
			{Name: "wait", Kind: statemachine.KindDefault},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		table        *statemachine.Table
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:      "valid table",
			table:     validTable(),
			wantValid: true,
		},
		{
			name: "every build error at once",
			table: &statemachine.Table{
				Name: "broken",
				States: []statemachine.StateConfig{
					{Name: "a", Kind: statemachine.KindTimed},
					{Name: "a"},
					{Name: "d1", Kind: statemachine.KindDefault},
					{Name: "d2", Kind: statemachine.KindDefault},
				},
			},
			wantErrors: []string{"DUPLICATE_STATE", "NO_FIRST_STATE", "MULTIPLE_DEFAULT_STATES", "INVALID_DURATION"},
		},
		{
			name: "multiple first states",
			table: &statemachine.Table{
				Name: "firsts",
				States: []statemachine.StateConfig{
					{Name: "a", First: true},
					{Name: "b", First: true},
				},
			},
			wantErrors: []string{"MULTIPLE_FIRST_STATES"},
		},
		{
			name: "dangling next",
			table: &statemachine.Table{
				Name: "dangling",
				States: []statemachine.StateConfig{
					{Name: "drive", Kind: statemachine.KindTimed, Duration: time.Second, Next: "shot", First: true},
					{Name: "shoot"},
				},
			},
			wantErrors: []string{"DANGLING_NEXT"},
		},
		{
			name: "ignored fields",
			table: &statemachine.Table{
				Name: "ignored",
				States: []statemachine.StateConfig{
					{Name: "a", Duration: time.Second, Next: "b", First: true},
					{Name: "b", Kind: statemachine.KindDefault, MustFinish: true},
				},
			},
			wantValid:    true,
			wantWarnings: []string{"IGNORED_FIELD", "IGNORED_FIELD"},
		},
		{
			name: "timed cycle",
			table: &statemachine.Table{
				Name: "cycle",
				States: []statemachine.StateConfig{
					{Name: "a", Kind: statemachine.KindTimed, Duration: time.Second, Next: "b", First: true},
					{Name: "b", Kind: statemachine.KindTimed, Duration: time.Second, Next: "a"},
				},
			},
			wantValid:    true,
			wantWarnings: []string{"TIMED_CYCLE"},
		},
		{
			name: "default marked first and camel case",
			table: &statemachine.Table{
				Name: "style",
				States: []statemachine.StateConfig{
					{Name: "waitHere", Kind: statemachine.KindDefault, First: true},
				},
			},
			wantErrors:   []string{"DEFAULT_IS_FIRST"},
			wantWarnings: []string{"NAMING_CONVENTION"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := Validate(tt.table)

			assert.Equal(t, tt.wantValid, result.Valid, result.String())
			assert.ElementsMatch(t, tt.wantErrors, codes(result.Errors))
			assert.ElementsMatch(t, tt.wantWarnings, codes(result.Warnings))
		})
	}
}

func TestValidateStrict(t *testing.T) {
	t.Parallel()

	table := validTable()
	table.States[2].MustFinish = true

	result := ValidateWithRulesStrict(table, DefaultRules())

	assert.False(t, result.Valid)
	assert.False(t, result.HasWarnings())
	assert.Equal(t, []string{"IGNORED_FIELD"}, codes(result.Errors))
}

func TestValidateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`name: good
states:
  - name: only
    first: true
  - name: Late
    kind: timed
    duration: 1s
`), 0o600))

	result, err := ValidateFile(good)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, good, result.Warnings[0].Location.File)

	result, err = ValidateFileStrict(good)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	_, err = ValidateFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestFixes(t *testing.T) {
	t.Parallel()

	table := &statemachine.Table{
		Name: "fixable",
		States: []statemachine.StateConfig{
			{Name: "driveFwd", Kind: statemachine.KindTimed, Duration: time.Second, Next: "shot"},
			{Name: "shoot", Duration: time.Second},
			{Name: "wait", Kind: statemachine.KindDefault, MustFinish: true},
		},
	}

	result := Validate(table)
	require.False(t, result.Valid)
	assert.Contains(t, result.String(), "Fix: Change next state of 'driveFwd' to 'shoot'")

	fixed, err := ApplyFixes(table, result.Fixes())
	require.NoError(t, err)

	// the input is untouched
	assert.Equal(t, "shot", table.States[0].Next)
	assert.Equal(t, "driveFwd", table.States[0].Name)

	again := Validate(fixed)
	assert.True(t, again.Valid, again.String())
	assert.Empty(t, again.Warnings, again.String())

	assert.Equal(t, "drive_fwd", fixed.States[0].Name)
	assert.True(t, fixed.States[0].First)
	assert.Equal(t, "shoot", fixed.States[0].Next)
	assert.Zero(t, fixed.States[1].Duration)
	assert.False(t, fixed.States[2].MustFinish)
}

func TestFixErrors(t *testing.T) {
	t.Parallel()

	table := validTable()

	require.ErrorIs(t, MarkFirst("missing").Apply(table), ErrStateNotFound)
	require.ErrorIs(t, RenameState("fire", "wait").Apply(table), ErrStateAlreadyExists)
	require.ErrorIs(t, RetargetNext("wait", "fire").Apply(table), ErrNotTimed)
}

func TestClosestName(t *testing.T) {
	t.Parallel()

	names := map[string]bool{"shoot": true, "drive": true}

	assert.Equal(t, "shoot", closestName("shot", names))
	assert.Equal(t, "drive", closestName("drvie", names))
	assert.Empty(t, closestName("completely_else", names))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}
