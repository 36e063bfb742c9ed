package build_test

import (
	"runtime/debug"
	"testing"

	"github.com/amp-labs/magicbot/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		js     string
		wantOK bool
		want   *build.Info
	}{
		{name: "empty"},
		{name: "empty object", js: "{}"},
		{name: "invalid", js: "not valid json"},
		{
			name:   "full",
			js:     `{"version":"v1.2.0","git_commit":"abc123","build_time":"2026-01-01T00:00:00Z","dependencies":{"github.com/looplab/fsm":"v1.0.3"}}`,
			wantOK: true,
			want: &build.Info{
				Version:      "v1.2.0",
				GitCommit:    "abc123",
				BuildTime:    "2026-01-01T00:00:00Z",
				Dependencies: map[string]string{"github.com/looplab/fsm": "v1.0.3"},
			},
		},
		{
			name:   "partial",
			js:     `{"git_commit":"abc123"}`,
			wantOK: true,
			want:   &build.Info{GitCommit: "abc123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info, ok := build.Parse(tt.js)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, info)
		})
	}
}

func TestFromBuildInfo(t *testing.T) {
	t.Parallel()

	info := build.FromBuildInfo(&debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Path: "github.com/amp-labs/magicbot", Version: "v0.3.0"},
		Deps: []*debug.Module{
			{Path: "github.com/looplab/fsm", Version: "v1.0.3"},
			{Path: "github.com/alitto/pond/v2", Version: "v2.6.0"},
		},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-01T10:00:00Z"},
		},
	})

	assert.Equal(t, "v0.3.0", info.Version)
	assert.Equal(t, "0123456789abcdef0123", info.GitCommit)
	assert.Equal(t,
		"magicbot v0.3.0, commit 0123456789ab, date 2026-10-01T10:00:00Z, go1.25.0",
		info.String())

	assert.Equal(t, "magicbot v0.3.0, commit 0123456789ab, date 2026-10-01T10:00:00Z, go1.25.0\n"+
		"  github.com/alitto/pond/v2 v2.6.0\n"+
		"  github.com/looplab/fsm v1.0.3\n", info.Describe())
}

func TestCurrent(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, build.Current().String())
	assert.Equal(t, "magicbot unknown", build.Info{}.String())
}
