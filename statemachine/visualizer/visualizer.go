// Package visualizer generates Mermaid diagrams from state registries.
package visualizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/magicbot/statemachine"
)

// ErrRegistryNil is returned when no registry is given.
var ErrRegistryNil = errors.New("registry cannot be nil")

// GenerateMermaid converts a Registry to a Mermaid state diagram.
func GenerateMermaid(registry *statemachine.Registry) (string, error) {
	return GenerateMermaidWithOptions(registry, DefaultOptions())
}

// GenerateMermaidFromFile loads a state table from a file and generates a Mermaid diagram.
func GenerateMermaidFromFile(path string, opts Options) (string, error) {
	table, err := statemachine.LoadTable(path)
	if err != nil {
		return "", fmt.Errorf("failed to load table: %w", err)
	}

	registry, err := statemachine.BuildRegistry(table.Specs())
	if err != nil {
		return "", fmt.Errorf("table %s: %w", table.Name, err)
	}

	return GenerateMermaidWithOptions(registry, opts)
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
//
// Only transitions declared in the registry are drawn: the first state, the
// chains of timed states and the end of a run. Transitions that state bodies
// make in code are not visible here.
func GenerateMermaidWithOptions(registry *statemachine.Registry, opts Options) (string, error) {
	if registry == nil {
		return "", ErrRegistryNil
	}

	var sb strings.Builder

	sb.WriteString("```mermaid\n")
	sb.WriteString("stateDiagram-v2\n")

	if opts.Direction != "" {
		sb.WriteString(fmt.Sprintf("    direction %s\n", opts.Direction))
	}

	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", registry.First()))

	highlightMap := make(map[string]bool)
	for _, state := range opts.HighlightPath {
		highlightMap[state] = true
	}

	for _, desc := range registry.Descriptors() {
		name := desc.Name()

		if opts.ShowDurations && desc.Kind() == statemachine.KindTimed {
			sb.WriteString(fmt.Sprintf("    %s: %s\\n[%s]\n", name, name, desc.Duration()))
		}

		switch {
		case highlightMap[name]:
			sb.WriteString(fmt.Sprintf("    class %s highlighted\n", name))
		case desc.IsDefault():
			sb.WriteString(fmt.Sprintf("    class %s defaultState\n", name))
		case desc.MustFinish():
			sb.WriteString(fmt.Sprintf("    class %s mustFinish\n", name))
		}

		if desc.Kind() != statemachine.KindTimed {
			continue
		}

		label := ""
		if opts.ShowDurations {
			label = fmt.Sprintf(": after %s", desc.Duration())
		}

		if next, ok := desc.Next(); ok {
			sb.WriteString(fmt.Sprintf("    %s --> %s%s\n", name, next, label))
		} else {
			sb.WriteString(fmt.Sprintf("    %s --> [*]%s\n", name, label))
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef defaultState fill:#eeeeee,stroke:#616161,stroke-dasharray:5 5\n")
	sb.WriteString("    classDef mustFinish fill:#ffe0b2,stroke:#e65100,stroke-width:2px\n")
	sb.WriteString("    classDef highlighted fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")

	sb.WriteString("```\n")

	return sb.String(), nil
}
