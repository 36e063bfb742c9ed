// Package cli holds the interactive pieces of the magicbot command line.
package cli

import (
	"errors"
	"slices"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrNoChoices is returned when there is nothing to pick from.
var ErrNoChoices = errors.New("no choices")

// Picker asks the user to choose one item.
type Picker func(label string, items []string, cursor int) (string, error)

// PromptPicker runs an interactive promptui list.
func PromptPicker(label string, items []string, cursor int) (string, error) {
	sel := &promptui.Select{
		Label:     label,
		Items:     items,
		CursorPos: cursor,
		Size:      min(len(items), 10), //nolint:mnd
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
	}

	_, value, err := sel.Run()
	if err != nil {
		return "", err
	}

	return value, nil
}

// SelectOne lets the user pick one of choices, with the cursor starting on
// preferred when it is present.
func SelectOne(pick Picker, label string, choices []string, preferred string) (string, error) {
	if len(choices) == 0 {
		return "", ErrNoChoices
	}

	cursor := max(slices.Index(choices, preferred), 0)

	return pick(label, choices, cursor)
}
