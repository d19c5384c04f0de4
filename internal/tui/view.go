package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/search"
	"github.com/nikbrunner/tcm/internal/session"
	"github.com/nikbrunner/tcm/internal/tree"
	"github.com/nikbrunner/tcm/internal/tui/layout"
)

// Placeholder is shown in the detail pane when no test case is displayed.
const Placeholder = "Select a test case to see its details"

// renderView creates the complete two-pane view.
func (a App) renderView() string {
	switch a.mode {
	case ModeHelp:
		return a.renderHelpOverlay()
	case ModeForm, ModeConfirmDelete, ModeMkdir, ModeSearch:
		return a.renderModal()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	panes := layout.CalculatePaneWidths(a.width, a.layoutConfig.Pane)

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.renderLeftPane(panes.TreeWidth, paneHeight),
		a.renderDetailPane(panes.DetailWidth, paneHeight),
	)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), columns, a.renderHelpBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the backend URL above the panes.
func (a App) renderHeader() string {
	text := "tcm  " + a.serverURL
	if a.state.CurrentPath != "" {
		text += "  " + a.state.CurrentPath
	}
	text = layout.Truncate(text, a.width-4, a.layoutConfig.Text)
	return a.styles.Header.Render(text)
}

// pane wraps content in the pane border, clipped to height.
func (a App) pane(content string, width, height int, active bool) string {
	style := a.styles.Pane
	if active {
		style = a.styles.PaneActive
	}
	return style.
		Width(width).
		Height(height).
		Render(clipLines(strings.TrimRight(content, "\n"), height))
}

func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}

// renderLeftPane renders the tree, the search results or the local filter.
func (a App) renderLeftPane(width, height int) string {
	active := a.mode == ModeNormal || a.mode == ModeFilter || a.mode == ModeMove
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	switch {
	case a.mode == ModeFilter:
		return a.pane(a.renderFilter(itemWidth, height), width, height, active)
	case a.state.Searching:
		return a.pane(a.renderResults(itemWidth, height), width, height, active)
	}
	return a.pane(a.renderTree(itemWidth, height), width, height, active)
}

func (a App) renderTree(itemWidth, height int) string {
	var content strings.Builder

	rows := a.Rows()
	if len(rows) == 0 {
		if a.state.InFlight > 0 {
			content.WriteString(a.styles.Empty.Render("loading..."))
		} else {
			content.WriteString(a.styles.Empty.Render("(no test files)"))
		}
		return content.String()
	}

	// Calculate viewport offset to keep cursor visible
	offset := layout.CalculateViewportOffset(a.cursor, len(rows), height)
	for i, row := range rows {
		if i < offset {
			continue
		}
		if i >= offset+height {
			break
		}
		content.WriteString(a.renderTreeRow(row, i == a.cursor, itemWidth) + "\n")
	}
	return content.String()
}

func (a App) renderTreeRow(row tree.Row, isCursor bool, maxWidth int) string {
	prefix := strings.Repeat(" ", row.Depth*a.layoutConfig.Pane.IndentWidth)
	var suffix string

	if row.Node.IsFolder() {
		if row.Expanded {
			prefix += "▾ "
		} else {
			prefix += "▸ "
		}
		suffix = "/"
	} else {
		prefix += "  "
		suffix = " (" + strconv.Itoa(row.Node.Count) + ")"
	}

	line := layout.Label(row.Node.Name, maxWidth, prefix, suffix, a.layoutConfig.Text)

	grabbed := a.move.Active() && row.Node.ID == a.move.Origin()
	switch {
	case isCursor && a.mode == ModeMove:
		return a.styles.ItemTarget.Render(layout.PadRight(line, maxWidth))
	case isCursor && a.mode != ModeFilter:
		return a.styles.ItemSelected.Render(layout.PadRight(line, maxWidth))
	case grabbed:
		return a.styles.ItemGrabbed.Render(line)
	case row.Node.IsFolder():
		return a.styles.Folder.Render(line)
	case row.Node.FilePath == a.state.CurrentPath:
		return a.styles.Title.Render(line)
	}
	return a.styles.Item.Render(line)
}

// highlight renders text with every occurrence of query in the match style.
func (a App) highlight(text, query string, base func(...string) string) string {
	return search.Render(search.Spans(text, query), func(s string) string { return base(s) }, func(s string) string {
		return a.styles.Match.Render(s)
	})
}

// renderResults renders search results as two-line cards.
func (a App) renderResults(itemWidth, height int) string {
	var content strings.Builder
	content.WriteString(a.styles.Title.Render(a.state.SearchHeader()) + "\n\n")

	if len(a.state.Results) == 0 {
		content.WriteString(a.styles.Empty.Render(search.EmptyResults))
		return content.String()
	}

	perCard := 3
	visible := layout.CalculateVisibleHeight(height, 2) / perCard
	if visible < 1 {
		visible = 1
	}
	start, end := layout.ScrollWindow(visible, a.cursor, len(a.state.Results))

	q := a.state.SearchQuery
	for i := start; i < end; i++ {
		e := a.state.Results[i]
		tc := e.TestCase

		marker := "  "
		titleStyle := a.styles.File
		if i == a.cursor {
			marker = "▸ "
			titleStyle = a.styles.Title
		}
		title := layout.Truncate(a.highlight(tc.Title, q, titleStyle.Render), itemWidth-2, a.layoutConfig.Text)
		meta := a.highlight(tc.ID, q, a.styles.Meta.Render) +
			a.styles.Meta.Render(fmt.Sprintf(" · %s · %s · %s", tc.Author, tc.Status, e.FilePath))
		meta = layout.Truncate(meta, itemWidth-2, a.layoutConfig.Text)

		content.WriteString(marker + title + "\n")
		content.WriteString("  " + meta + "\n\n")
	}
	return content.String()
}

// renderFilter renders the local filter input and its matches.
func (a App) renderFilter(itemWidth, height int) string {
	var content strings.Builder
	content.WriteString("/" + a.filter.Input.View() + "\n")

	if len(a.filter.Matches) == 0 {
		content.WriteString(a.styles.Empty.Render("(no matches)"))
		return content.String()
	}

	start, end := layout.ScrollWindow(layout.CalculateVisibleHeight(height, 1), a.filter.Cursor, len(a.filter.Matches))
	query := strings.TrimSpace(a.filter.Input.Value())
	for i := start; i < end; i++ {
		e := a.filter.Matches[i].Entry
		line := e.TestCase.Title + "  " + a.styles.Meta.Render(e.FilePath)
		if query != "" {
			line = a.highlight(e.TestCase.Title, query, a.styles.File.Render) + "  " + a.styles.Meta.Render(e.FilePath)
		}
		line = layout.Truncate(line, itemWidth-2, a.layoutConfig.Text)
		if i == a.filter.Cursor {
			content.WriteString(a.styles.Title.Render("▸ ") + line + "\n")
		} else {
			content.WriteString("  " + line + "\n")
		}
	}
	return content.String()
}

// renderDetailPane renders the file listing, the displayed test case, or
// the placeholder.
func (a App) renderDetailPane(width, height int) string {
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)
	active := a.mode == ModeListing || a.mode == ModeReorder

	switch {
	case len(a.state.Listing) > 0:
		return a.pane(a.renderListing(itemWidth, height), width, height, active)
	case a.state.Current != nil:
		return a.pane(a.renderTestCase(*a.state.Current, itemWidth), width, height, active)
	}
	return a.pane(a.styles.Empty.Render(Placeholder), width, height, false)
}

func (a App) renderListing(itemWidth, height int) string {
	var content strings.Builder
	content.WriteString(a.styles.Title.Render(a.state.ListingPath) + "\n")
	content.WriteString(a.styles.Meta.Render(strconv.Itoa(len(a.state.Listing))+" test cases") + "\n\n")

	start, end := layout.ScrollWindow(layout.CalculateVisibleHeight(height, 3), a.listCursor, len(a.state.Listing))
	for i := start; i < end; i++ {
		tc := a.state.Listing[i].TestCase
		line := layout.Truncate(tc.Title, itemWidth-2, a.layoutConfig.Text)
		meta := a.styles.Meta.Render("  " + tc.ID + " · " + string(tc.Status))
		if i == a.listCursor && a.mode == ModeListing {
			content.WriteString(a.styles.ItemSelected.Render(layout.PadRight(line, itemWidth-2)) + "\n")
		} else {
			content.WriteString(a.styles.Item.Render(line) + meta + "\n")
		}
	}
	return content.String()
}

// detailField renders one "label  value" line.
func (a App) detailField(label, value string) string {
	if value == "" {
		value = a.styles.Empty.Render("-")
	}
	return a.styles.Label.Render(label) + value + "\n"
}

func (a App) renderTestCase(tc model.TestCase, itemWidth int) string {
	var content strings.Builder

	title := layout.Truncate(tc.Title, itemWidth, a.layoutConfig.Text)
	content.WriteString(a.styles.Title.Render(title) + "\n\n")

	content.WriteString(a.detailField("ID", a.styles.Meta.Render(tc.ID)))
	content.WriteString(a.detailField("Author", tc.Author))
	content.WriteString(a.detailField("Status", a.styles.Status.Render(string(tc.Status))))
	content.WriteString(a.detailField("Use case", tc.UseCaseID))

	tags := make([]string, len(tc.Tags))
	for i, t := range tc.Tags {
		tags[i] = a.styles.Tag.Render("#" + t)
	}
	content.WriteString(a.detailField("Tags", strings.Join(tags, " ")))

	levels := make([]string, len(tc.Levels))
	for i, l := range tc.Levels {
		levels[i] = a.styles.Level.Render(l)
	}
	content.WriteString(a.detailField("Levels", strings.Join(levels, ", ")))

	if tc.Precondition != "" {
		content.WriteString("\n" + a.styles.Title.Render("Precondition") + "\n")
		content.WriteString(tc.Precondition + "\n")
	}

	content.WriteString("\n" + a.styles.Title.Render("Steps") + "\n")
	content.WriteString(a.renderSteps(tc, itemWidth))

	if tc.CreatedAt != "" || tc.UpdatedAt != "" {
		content.WriteString("\n" + a.styles.Meta.Render("created "+tc.CreatedAt+"  updated "+tc.UpdatedAt) + "\n")
	}
	return content.String()
}

// renderSteps numbers steps from 1. While a reorder is in progress the
// working order is shown instead of the stored one.
func (a App) renderSteps(tc model.TestCase, itemWidth int) string {
	steps := tc.Actions
	if a.reorder.Active() && a.reorder.TestCaseID == tc.ID {
		steps = a.reorder.Working
	}
	if len(steps) == 0 {
		return a.styles.Empty.Render("(no steps)") + "\n"
	}

	var content strings.Builder
	for i, s := range steps {
		line := fmt.Sprintf("%d. %s", i+1, s.Step)
		line = layout.Truncate(line, itemWidth, a.layoutConfig.Text)
		expected := layout.Truncate("   → "+s.ExpectedRes, itemWidth, a.layoutConfig.Text)

		switch {
		case a.mode == ModeReorder && a.reorder.Dragging() && i == a.reorder.Cursor:
			content.WriteString(a.styles.ItemGrabbed.Render(line) + "\n")
		case a.mode == ModeReorder && i == a.stepCursor:
			content.WriteString(a.styles.ItemSelected.Render(layout.PadRight(line, itemWidth-1)) + "\n")
		default:
			content.WriteString(line + "\n")
		}
		content.WriteString(a.styles.Meta.Render(expected) + "\n")
	}
	return content.String()
}

// renderHelpBar renders the notice line and the keyboard hints.
func (a App) renderHelpBar() string {
	var lines []string

	// Line 1: notice, with the in-flight counter on the right
	status := a.renderNotice()
	if a.state.InFlight > 0 {
		status += a.styles.Meta.Render(fmt.Sprintf("  [%d pending]", a.state.InFlight))
	}
	lines = append(lines, status)

	// Line 2: Local (contextual) keyboard hints
	if localHints := a.renderHints(a.getContextualHints()); localHints != "" {
		lines = append(lines, a.styles.HintLabel.Render("Local  ")+localHints)
	}

	// Line 3: Global keyboard hints (only in normal mode)
	if a.mode == ModeNormal {
		lines = append(lines, a.styles.HintLabel.Render("Global ")+a.renderHintSlice(a.getGlobalHints()))
	}

	return strings.Join(lines, "\n")
}

// renderNotice renders the styled notice with a prefix icon based on kind.
func (a App) renderNotice() string {
	n := a.state.Notice
	switch n.Kind {
	case session.NoticeError:
		return a.styles.Error.Render("✗ " + n.Text)
	case session.NoticeSuccess:
		return a.styles.Success.Render("✓ " + n.Text)
	case session.NoticeInfo:
		return a.styles.Info.Render(n.Text)
	}
	return ""
}

// renderModal renders the modal for the current mode centred above the
// help bar.
func (a App) renderModal() string {
	var title, content strings.Builder

	widthPercent := a.layoutConfig.Modal.DefaultWidthPercent
	if a.mode == ModeForm {
		widthPercent = a.layoutConfig.Modal.FormWidthPercent
	}
	modalWidth := layout.ModalWidth(a.width, widthPercent, a.layoutConfig.Modal)

	switch a.mode {
	case ModeForm:
		return a.renderForm(modalWidth)

	case ModeSearch:
		title.WriteString("Search\n\n")
		content.WriteString(a.search.View() + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "Enter", Desc: "search"},
			{Key: "Esc", Desc: "cancel"},
		}))

	case ModeMkdir:
		title.WriteString("New Folder\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.mkdirInput.View() + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "Enter", Desc: "create"},
			{Key: "Esc", Desc: "cancel"},
		}))

	case ModeConfirmDelete:
		name := "this test case"
		if a.state.Current != nil {
			name = a.state.Current.Title
		}
		title.WriteString("Delete Test Case?\n\n")
		content.WriteString("\"" + name + "\"\n\n")
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "y/Enter", Desc: "confirm"},
			{Key: "n/Esc", Desc: "cancel"},
		}))
	}

	return a.placeModal(a.styles.Title.Render(title.String())+content.String(), modalWidth)
}

func (a App) placeModal(body string, width int) string {
	modal := lipgloss.Place(
		a.width,
		a.height-3, // Leave room for help bar
		lipgloss.Center,
		lipgloss.Center,
		a.styles.Modal.Width(width).Render(body),
	)
	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderHelpBar())
}

// formLabel renders a field label, accented when focused.
func (a App) formLabel(text string, field int) string {
	if a.form.Focus == field {
		return a.styles.Title.Render("▸ "+text) + "\n"
	}
	return "  " + text + "\n"
}

func (a App) renderChips(items []string, style lipgloss.Style) string {
	if len(items) == 0 {
		return ""
	}
	chips := make([]string, len(items))
	for i, it := range items {
		chips[i] = style.Render("[" + it + "]")
	}
	return strings.Join(chips, " ") + " "
}

// renderForm renders the create/edit form. Tags, levels and steps are
// projections of the form's ordered collections.
func (a App) renderForm(width int) string {
	f := a.state.Form
	fs := a.form
	var content strings.Builder

	heading := "New Test Case"
	if f.IsEdit() {
		heading = "Edit Test Case"
	}
	content.WriteString(a.styles.Title.Render(heading) + "\n")
	if f.IsEdit() {
		content.WriteString(a.styles.Meta.Render(f.EditID) + "\n")
	} else {
		target := f.FilePath
		if target == "" {
			target = "(server default)"
		}
		content.WriteString(a.styles.Meta.Render("file: "+target) + "\n")
	}
	content.WriteString("\n")

	content.WriteString(a.formLabel("Title *", fieldTitle) + "  " + fs.Title.View() + "\n")
	content.WriteString(a.formLabel("Author *", fieldAuthor) + "  " + fs.Author.View() + "\n")

	status := string(f.Status)
	if fs.Focus == fieldStatus {
		status = "◂ " + status + " ▸"
	}
	content.WriteString(a.formLabel("Status", fieldStatus) + "  " + a.styles.Status.Render(status) + "\n")
	content.WriteString(a.formLabel("Use case ID", fieldUseCase) + "  " + fs.UseCase.View() + "\n")
	content.WriteString(a.formLabel("Precondition", fieldPrecondition) + "  " + fs.Precondition.View() + "\n")
	content.WriteString(a.formLabel("Tags", fieldTag) + "  " + a.renderChips(f.Tags, a.styles.Tag) + fs.Tag.View() + "\n")
	content.WriteString(a.formLabel("Levels", fieldLevel) + "  " + a.renderChips(f.Levels, a.styles.Level) + fs.Level.View() + "\n")

	content.WriteString("\n" + a.styles.Title.Render(fmt.Sprintf("Steps (%d)", len(fs.Steps))) + "\n")
	row, _ := fs.stepRow()
	start, end := layout.ScrollWindow(a.layoutConfig.Modal.FormMaxSteps, row, len(fs.Steps))
	if start > 0 {
		content.WriteString(a.styles.Meta.Render("  ...") + "\n")
	}
	for i := start; i < end; i++ {
		marker := "  "
		if r, ok := fs.stepRow(); ok && r == i {
			marker = a.styles.Title.Render("▸ ")
		}
		content.WriteString(fmt.Sprintf("%s%d. %s  → %s\n", marker, i+1, fs.Steps[i].Action.View(), fs.Steps[i].Expected.View()))
	}
	if end < len(fs.Steps) {
		content.WriteString(a.styles.Meta.Render("  ...") + "\n")
	}

	content.WriteString("\n" + a.renderHintsInline(a.getFormHints()))

	return a.placeModal(content.String(), width)
}

// renderHelpOverlay renders the key reference.
func (a App) renderHelpOverlay() string {
	// Brutalist style: no border, just raw columns
	modalStyle := lipgloss.NewStyle().
		Padding(1, 2)

	// Left column: Navigation + search
	var left strings.Builder
	left.WriteString(a.styles.Title.Render("nav") + "\n")
	left.WriteString("j/k    move\n")
	left.WriteString("h      close/parent\n")
	left.WriteString("l      open\n")
	left.WriteString("gg     top\n")
	left.WriteString("G      bottom\n")
	left.WriteString("\n")
	left.WriteString(a.styles.Title.Render("find") + "\n")
	left.WriteString("s      search\n")
	left.WriteString("/      filter\n")
	left.WriteString("Esc    back to tree\n")
	left.WriteString("R      reload\n")

	// Right column: Edit
	var right strings.Builder
	right.WriteString(a.styles.Title.Render("edit") + "\n")
	right.WriteString("a      new test case\n")
	right.WriteString("A      new folder\n")
	right.WriteString("e      edit\n")
	right.WriteString("D      duplicate\n")
	right.WriteString("d      delete\n")
	right.WriteString("m      move to file\n")
	right.WriteString("r      reorder steps\n")
	right.WriteString("Y      yank id\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Title.Render("form") + "\n")
	right.WriteString("ctrl+s save\n")
	right.WriteString("ctrl+n add step\n")
	right.WriteString("ctrl+d remove step\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Help.Render("[?/esc] close"))

	// Join columns
	leftCol := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpLeftColumnWidth).Render(left.String())
	rightCol := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpRightColumnWidth).Render(right.String())
	cols := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "  ", rightCol)

	// Top-left aligned, brutalist style
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		modalStyle.Render(cols),
	)
}
