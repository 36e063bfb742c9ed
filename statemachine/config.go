package statemachine

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Table is a registration table in its serialized form. Bodies are code,
// so they are bound by state name after loading.
type Table struct {
	Name   string        `json:"name"   yaml:"name"`
	States []StateConfig `json:"states" yaml:"states"`
}

// StateConfig is one state of a Table.
type StateConfig struct {
	Name       string        `json:"name"                 yaml:"name"`
	Kind       Kind          `json:"kind"                 yaml:"kind"`
	Duration   time.Duration `json:"duration,omitempty"   yaml:"duration,omitempty"`
	Next       string        `json:"next,omitempty"       yaml:"next,omitempty"`
	First      bool          `json:"first,omitempty"      yaml:"first,omitempty"`
	MustFinish bool          `json:"mustFinish,omitempty" yaml:"mustFinish,omitempty"`
}

// LoadTable loads a table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read table file %q: %w", path, err)
	}

	return LoadTableFromBytes(data)
}

// LoadTableFromFS loads a table from a filesystem, typically an embed.FS.
func LoadTableFromFS(fsys fs.FS, path string) (*Table, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table from FS: %w", err)
	}

	return LoadTableFromBytes(data)
}

// LoadTableFromBytes parses a YAML table. Durations are written the way
// time.ParseDuration reads them, e.g. "1.5s".
func LoadTableFromBytes(data []byte) (*Table, error) {
	var table Table

	err := yaml.Unmarshal(data, &table)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if table.Name == "" {
		return nil, ErrTableNameRequired
	}

	return &table, nil
}

// Specs converts the table to registration specs without bodies.
func (t *Table) Specs() []StateSpec {
	specs := make([]StateSpec, len(t.States))
	for i, state := range t.States {
		specs[i] = StateSpec{
			Name:       state.Name,
			Kind:       state.Kind,
			Duration:   state.Duration,
			Next:       state.Next,
			First:      state.First,
			MustFinish: state.MustFinish,
		}
	}

	return specs
}

// Bind converts the table to registration specs, attaching a body to every
// state by name. Every declared state needs a body and every body needs a
// declared state.
func (t *Table) Bind(bodies map[string]StateFunc) ([]StateSpec, error) {
	specs := t.Specs()
	declared := make(map[string]bool, len(specs))

	for i := range specs {
		declared[specs[i].Name] = true

		body, ok := bodies[specs[i].Name]
		if !ok || body == nil {
			return nil, WrapStateError(specs[i].Name, ErrMissingBody)
		}

		specs[i].Body = body
	}

	names := make([]string, 0, len(bodies))
	for name := range bodies {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if !declared[name] {
			return nil, WrapStateError(name, ErrUnknownBody)
		}
	}

	return specs, nil
}

// Build binds bodies and constructs a machine named after the table.
func (t *Table) Build(bodies map[string]StateFunc, opts ...Option) (*Machine, error) {
	specs, err := t.Bind(bodies)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", t.Name, err)
	}

	return New(t.Name, specs, opts...)
}

// Marshal renders the table back to YAML.
func (t *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}
