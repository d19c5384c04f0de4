package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig holds dimensions of the tree and detail panes.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + header (1) + pane borders (2) + status bar (4) = 8
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// TreeWidthPercent is the share of the usable width given to the tree pane.
	TreeWidthPercent int

	// WidthOffset is subtracted from terminal width before splitting.
	// Accounts for app padding and the borders of both panes.
	WidthOffset int

	// MinTreeWidth and MinDetailWidth clamp the two panes.
	MinTreeWidth   int
	MinDetailWidth int

	// ContentPadding is subtracted from pane width for item rendering.
	// Accounts for pane border/padding on each side.
	ContentPadding int

	// IndentWidth is the number of columns per tree depth level.
	IndentWidth int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// FormWidthPercent is used by the test-case form.
	FormWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// FormMaxSteps: step rows shown at once in the form before scrolling.
	FormMaxSteps int

	// HelpLeftColumnWidth: width for help overlay left column.
	HelpLeftColumnWidth int

	// HelpRightColumnWidth: width for help overlay right column.
	HelpRightColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Character limits
	TitleCharLimit  int
	TextCharLimit   int // precondition, step action, expected result
	ChipCharLimit   int // one tag or level
	SearchCharLimit int
	FilterCharLimit int
	NameCharLimit   int // directory name

	// Display widths
	StandardWidth int // title, author, search, directory name
	FilterWidth   int // inline filter (narrower)
	StepWidth     int // each half of a step row
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:  8, // app padding (1) + header (1) + pane borders (2) + status bar (4)
			MinHeight:        5,
			TreeWidthPercent: 40,
			WidthOffset:      8,
			MinTreeWidth:     24,
			MinDetailWidth:   30,
			ContentPadding:   4,
			IndentWidth:      2,
		},
		Modal: ModalConfig{
			DefaultWidthPercent:  40,
			FormWidthPercent:     70,
			MinWidth:             50,
			MaxWidth:             100,
			FormMaxSteps:         6,
			HelpLeftColumnWidth:  22,
			HelpRightColumnWidth: 24,
		},
		Input: InputConfig{
			TitleCharLimit:  200,
			TextCharLimit:   500,
			ChipCharLimit:   50,
			SearchCharLimit: 100,
			FilterCharLimit: 50,
			NameCharLimit:   100,
			StandardWidth:   40,
			FilterWidth:     30,
			StepWidth:       30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
