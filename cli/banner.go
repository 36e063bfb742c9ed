package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	boxTopLeft     = "╒"
	boxTopRight    = "╕"
	boxBottomLeft  = "└"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	ellipsis       = "…"

	// DefaultWidth is the banner width when the caller has no terminal size.
	DefaultWidth = 60
)

// Field is one "key: value" line of a banner.
type Field struct {
	Key   string
	Value string
}

// Banner draws a box with a centered title over left aligned fields. Lines
// that do not fit are truncated with an ellipsis.
func Banner(title string, width int, fields ...Field) string {
	if width < 4 { //nolint:mnd
		width = DefaultWidth
	}

	inner := width - 2 //nolint:mnd

	keyWidth := 0
	for _, f := range fields {
		keyWidth = max(keyWidth, utf8.RuneCountInString(f.Key))
	}

	lines := []string{
		boxTopLeft + strings.Repeat(boxTop, inner) + boxTopRight,
		boxSide + padCenter(title, inner) + boxSide,
	}

	for _, f := range fields {
		text := fmt.Sprintf(" %-*s  %s", keyWidth+1, f.Key+":", f.Value)
		lines = append(lines, boxSide+padRight(text, inner)+boxSide)
	}

	lines = append(lines, boxBottomLeft+strings.Repeat(boxBottom, inner)+boxBottomRight)

	return strings.Join(lines, "\n") + "\n"
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}

	runes := []rune(s)

	return string(runes[:width-1]) + ellipsis
}

func padRight(s string, width int) string {
	s = truncate(s, width)

	return s + strings.Repeat(" ", width-utf8.RuneCountInString(s))
}

func padCenter(s string, width int) string {
	s = truncate(s, width)
	gap := width - utf8.RuneCountInString(s)
	left := gap / 2 //nolint:mnd

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}
