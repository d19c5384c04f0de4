package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const resetStyle = "\x1b[0m"

// StripANSI removes escape sequences, leaving the printable text.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// Truncate shortens s to width terminal cells and marks the cut with the
// configured ellipsis. Styling in s is kept. A cut styled string gets a
// reset appended so a highlight cannot run into the padding.
func Truncate(s string, width int, cfg TextConfig) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	if ansi.StringWidth(cfg.Ellipsis) >= width {
		return ansi.Truncate(cfg.Ellipsis, width, "")
	}

	out := ansi.Truncate(s, width, cfg.Ellipsis)
	if strings.Contains(s, "\x1b[") {
		out += resetStyle
	}
	return out
}

// Label renders a tree row as prefix, name, suffix in width cells. Only the
// name is shortened, so indentation and the folder mark or test-case count
// stay readable. When not even that fits, the whole row is cut.
func Label(name string, width int, prefix, suffix string, cfg TextConfig) string {
	row := prefix + name + suffix
	if ansi.StringWidth(row) <= width {
		return row
	}

	room := width - ansi.StringWidth(prefix) - ansi.StringWidth(suffix)
	if room <= ansi.StringWidth(cfg.Ellipsis) {
		return Truncate(row, width, cfg)
	}
	return prefix + Truncate(name, room, cfg) + suffix
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	if n := ansi.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
