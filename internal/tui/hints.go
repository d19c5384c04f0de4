package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "j/k:move h:back l:open"
func (a App) renderHints(hints HintSet) string {
	return a.renderHintSlice(hints.All())
}

// renderHintSlice renders a slice of hints in horizontal format.
func (a App) renderHintSlice(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (j/k, h/l, etc.)
	Edit   []Hint // Edit hints (e, D, d, etc.)
	Action []Hint // Action hints (Enter, Space, etc.)
	System []Hint // System hints (?, q, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	switch a.mode {
	case ModeNormal:
		return a.getNormalModeHints()
	case ModeListing:
		return HintSet{
			Nav:    []Hint{{Key: "j/k", Desc: "move"}},
			Action: []Hint{{Key: "Enter", Desc: "open"}},
			System: []Hint{{Key: "Esc", Desc: "back"}},
		}
	case ModeFilter:
		return HintSet{
			Nav:    []Hint{{Key: "type", Desc: "filter"}, {Key: "↑/↓", Desc: "move"}},
			Action: []Hint{{Key: "Enter", Desc: "open"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	case ModeMove:
		return HintSet{
			Nav:    []Hint{{Key: "j/k", Desc: "target"}, {Key: "h/l", Desc: "fold"}},
			Action: []Hint{{Key: "Enter", Desc: "drop"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	case ModeReorder:
		return a.getReorderHints()
	case ModeHelp:
		// Help overlay covers screen, minimal hints
		return HintSet{
			System: []Hint{{Key: "?/q/Esc", Desc: "close"}},
		}
	default:
		// Modals carry their own inline hints
		return HintSet{}
	}
}

// getNormalModeHints returns hints for ModeNormal. Actions on the displayed
// test case are only offered while one is displayed.
func (a App) getNormalModeHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "h", Desc: "close"},
			{Key: "l", Desc: "open"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
	if a.state.Searching {
		hints.System = append([]Hint{{Key: "Esc", Desc: "back to tree"}}, hints.System...)
	}
	if a.state.ActionsVisible() {
		hints.Edit = []Hint{
			{Key: "e", Desc: "edit"},
			{Key: "D", Desc: "dup"},
			{Key: "d", Desc: "del"},
			{Key: "m", Desc: "move"},
			{Key: "r", Desc: "reorder"},
			{Key: "Y", Desc: "yank id"},
		}
	}
	return hints
}

// getReorderHints returns hints for ModeReorder.
func (a App) getReorderHints() HintSet {
	if a.reorder.Dragging() {
		return HintSet{
			Nav:    []Hint{{Key: "j/k", Desc: "shift step"}},
			Action: []Hint{{Key: "Space", Desc: "drop"}},
			System: []Hint{{Key: "Esc", Desc: "undo"}},
		}
	}
	return HintSet{
		Nav:    []Hint{{Key: "j/k", Desc: "pick step"}},
		Action: []Hint{{Key: "Space", Desc: "grab"}},
		System: []Hint{{Key: "Esc", Desc: "done"}},
	}
}

// getGlobalHints returns hints available from the main view.
func (a App) getGlobalHints() []Hint {
	return []Hint{
		{Key: "a", Desc: "new"},
		{Key: "A", Desc: "folder"},
		{Key: "s", Desc: "search"},
		{Key: "/", Desc: "filter"},
		{Key: "R", Desc: "reload"},
	}
}

// getFormHints returns the inline hints of the test-case form.
func (a App) getFormHints() []Hint {
	hints := []Hint{
		{Key: "ctrl+s", Desc: "save"},
		{Key: "tab", Desc: "next"},
		{Key: "ctrl+n", Desc: "add step"},
	}
	if a.state.Form != nil && a.state.Form.CanRemoveStep() {
		hints = append(hints, Hint{Key: "ctrl+d", Desc: "remove step"})
	}
	if _, ok := a.form.stepRow(); ok {
		hints = append(hints, Hint{Key: "ctrl+j/k", Desc: "move step"})
	}
	return append(hints, Hint{Key: "esc", Desc: "cancel"})
}
