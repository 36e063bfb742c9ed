// Package build reports version information for the magicbot binary.
package build

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
)

// infoJSON can be set at link time:
//
//	go build -ldflags "-X github.com/amp-labs/magicbot/build.infoJSON=$(cat build.json)"
var infoJSON string //nolint:gochecknoglobals

// Info describes a build.
type Info struct {
	Version      string            `json:"version"`
	GitCommit    string            `json:"git_commit"` //nolint:tagliatelle
	GitDate      string            `json:"git_date"`   //nolint:tagliatelle
	BuildTime    string            `json:"build_time"` //nolint:tagliatelle
	GoVersion    string            `json:"go_version"` //nolint:tagliatelle
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Parse deserializes build info. Returns (nil, false) if the input is empty,
// "{}", or fails to parse.
func Parse(js string) (*Info, bool) {
	if js == "" || js == "{}" {
		return nil, false
	}

	var info Info

	if err := json.Unmarshal([]byte(js), &info); err != nil {
		slog.Warn("Failed to parse build info from JSON",
			"data", js,
			"error", err)

		return nil, false
	}

	return &info, true
}

// Current returns the link time info if present, otherwise what the Go
// toolchain recorded in the binary.
func Current() Info {
	if info, ok := Parse(infoJSON); ok {
		return *info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{Version: "unknown"}
	}

	return FromBuildInfo(bi)
}

// FromBuildInfo converts toolchain build info.
func FromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:      bi.Main.Version,
		GoVersion:    bi.GoVersion,
		Dependencies: make(map[string]string, len(bi.Deps)),
	}

	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.GitCommit = setting.Value
		case "vcs.time":
			info.GitDate = setting.Value
		}
	}

	for _, dep := range bi.Deps {
		info.Dependencies[dep.Path] = dep.Version
	}

	return info
}

// String renders the info on one line.
func (i Info) String() string {
	parts := []string{"magicbot " + orUnknown(i.Version)}

	if i.GitCommit != "" {
		parts = append(parts, "commit "+shortCommit(i.GitCommit))
	}

	if i.GitDate != "" {
		parts = append(parts, "date "+i.GitDate)
	}

	if i.GoVersion != "" {
		parts = append(parts, i.GoVersion)
	}

	return strings.Join(parts, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}

func shortCommit(c string) string {
	const short = 12

	if len(c) > short {
		return c[:short]
	}

	return c
}

// Describe returns the dependency list, one module per line.
func (i Info) Describe() string {
	var sb strings.Builder

	sb.WriteString(i.String())
	sb.WriteString("\n")

	for _, path := range sortedKeys(i.Dependencies) {
		fmt.Fprintf(&sb, "  %s %s\n", path, i.Dependencies[path])
	}

	return sb.String()
}
