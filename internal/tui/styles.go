package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Pane         lipgloss.Style
	PaneActive   lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	ItemGrabbed  lipgloss.Style // test case or step being moved
	ItemTarget   lipgloss.Style // drop target under the cursor
	Folder       lipgloss.Style
	File         lipgloss.Style
	Count        lipgloss.Style
	Label        lipgloss.Style // field labels in the detail pane
	Meta         lipgloss.Style // ids, authors, file paths
	Tag          lipgloss.Style
	Level        lipgloss.Style
	Status       lipgloss.Style
	Match        lipgloss.Style // highlighted search term
	Help         lipgloss.Style
	Empty        lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	Info         lipgloss.Style
	HintKey      lipgloss.Style // Key portion of hints (e.g., "Enter", "j/k")
	HintDesc     lipgloss.Style // Description portion of hints (e.g., "confirm", "move")
	HintLabel    lipgloss.Style // "Local" / "Global" prefix
	Header       lipgloss.Style // server URL line above the panes
	Modal        lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}  // inactive borders
	warn := lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		PaneActive: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		ItemGrabbed: lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(warn).
			Bold(true),

		ItemTarget: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(warn).
			Foreground(lipgloss.Color("#1A1A1A")),

		Folder: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),

		File: lipgloss.NewStyle().
			Foreground(primary),

		Count: lipgloss.NewStyle().
			Foreground(subtle),

		Label: lipgloss.NewStyle().
			Foreground(subtle).
			Width(14),

		Meta: lipgloss.NewStyle().
			Foreground(subtle),

		Tag: lipgloss.NewStyle().
			Foreground(accent),

		Level: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),

		Status: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),

		Match: lipgloss.NewStyle().
			Foreground(warn).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(1, 0),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),

		HintLabel: lipgloss.NewStyle().
			Foreground(accent),

		Header: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(1, 2),
	}
}
