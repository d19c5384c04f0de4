package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/tcm/internal/drag"
	"github.com/nikbrunner/tcm/internal/form"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/search"
	"github.com/nikbrunner/tcm/internal/session"
	"github.com/nikbrunner/tcm/internal/tree"
)

var (
	listUp   = key.NewBinding(key.WithKeys("up", "ctrl+p"))
	listDown = key.NewBinding(key.WithKeys("down", "ctrl+n"))
	grab     = key.NewBinding(key.WithKeys(" ", "enter"))
	confirm  = key.NewBinding(key.WithKeys("y", "enter"))
	cancel   = key.NewBinding(key.WithKeys("n", "esc"))
)

func (a *App) notify(kind session.NoticeKind, text string) {
	a.state.Notice = session.Notice{Kind: kind, Text: text}
}

func (a App) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp

	case key.Matches(msg, a.keys.Back):
		if a.state.Searching {
			a.state.CloseSearch()
			a.cursor = 0
			a.cursorToFile(a.state.CurrentPath)
		}

	case key.Matches(msg, a.keys.Down):
		if a.cursor < a.leftLen()-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if n := a.leftLen(); n > 0 {
			a.cursor = n - 1
		}

	case key.Matches(msg, a.keys.Right):
		a.open()

	case key.Matches(msg, a.keys.Left):
		a.collapse()

	case key.Matches(msg, a.keys.Create):
		f := form.NewCreate()
		f.FilePath = a.targetFile()
		a.openForm(f)

	case key.Matches(msg, a.keys.AddFolder):
		a.mkdirInput.Reset()
		a.mkdirInput.Focus()
		a.mode = ModeMkdir

	case key.Matches(msg, a.keys.Search):
		a.search.Reset()
		a.search.Focus()
		a.mode = ModeSearch

	case key.Matches(msg, a.keys.Filter):
		a.filter.Reset()
		a.filter.Input.Focus()
		a.filter.Matches = allMatches(a.state.Snapshot.Listed())
		a.mode = ModeFilter

	case key.Matches(msg, a.keys.Reload):
		return a, a.run(a.syncer.Load)

	case key.Matches(msg, a.keys.YankID):
		if a.state.Current == nil {
			return a, nil
		}
		id := a.state.Current.ID
		if err := a.copyText(id); err != nil {
			a.logger.Warn("clipboard write failed", "err", err)
			a.notify(session.NoticeError, "clipboard: "+err.Error())
		} else {
			a.notify(session.NoticeInfo, "copied "+id)
		}
	}

	// Everything below needs a displayed test case
	if !a.state.ActionsVisible() {
		return a, nil
	}
	current := a.state.Current.Clone()
	syncer := a.syncer

	switch {
	case key.Matches(msg, a.keys.Edit):
		a.openForm(form.NewEdit(current))

	case key.Matches(msg, a.keys.Duplicate):
		return a, a.run(func(ctx context.Context, seq uint64) session.Outcome {
			return syncer.Duplicate(ctx, seq, current.ID)
		})

	case key.Matches(msg, a.keys.Delete):
		if a.confirmDelete {
			a.mode = ModeConfirmDelete
			return a, nil
		}
		return a, a.deleteCurrent()

	case key.Matches(msg, a.keys.Move):
		a.startMove()

	case key.Matches(msg, a.keys.Reorder):
		if len(current.Actions) < 2 {
			a.notify(session.NoticeInfo, "nothing to reorder")
			return a, nil
		}
		a.stepCursor = 0
		a.mode = ModeReorder
	}

	return a, nil
}

// open acts on the row under the cursor: folders toggle, files open,
// search results display.
func (a *App) open() {
	if a.state.Searching {
		if a.cursor < len(a.state.Results) {
			e := a.state.Results[a.cursor]
			a.state.Clear()
			a.state.Select(e.TestCase, e.FilePath)
		}
		return
	}

	row, ok := a.currentRow()
	if !ok {
		return
	}
	if row.Node.IsFolder() {
		a.state.Expanded = tree.ToggleExpand(a.state.Expanded, row.Node.ID, !row.Expanded)
		return
	}
	a.state.SelectFile(row.Node.FilePath)
	if len(a.state.Listing) > 0 {
		a.listCursor = 0
		a.mode = ModeListing
	}
}

// collapse closes an expanded folder, or moves to the parent row.
func (a *App) collapse() {
	row, ok := a.currentRow()
	if !ok {
		return
	}
	if row.Node.IsFolder() && row.Expanded {
		a.state.Expanded = tree.ToggleExpand(a.state.Expanded, row.Node.ID, false)
		return
	}
	if len(row.Parents) > 0 {
		a.cursorToRow(row.Parents[len(row.Parents)-1].ID)
	}
}

// targetFile is the file a new test case goes to: the file under the
// cursor, or the default file of the folder under the cursor.
func (a App) targetFile() string {
	row, ok := a.currentRow()
	if !ok {
		return ""
	}
	if !row.Node.IsFolder() {
		return row.Node.FilePath
	}
	path, err := drag.DropPath(row.Names(), a.defaultFile)
	if err != nil {
		return ""
	}
	return path
}

func (a *App) openForm(f *form.Form) {
	a.state.Form = f
	a.form = NewFormState(f, a.layoutConfig.Input)
	a.mode = ModeForm
}

func (a App) deleteCurrent() tea.Cmd {
	id := a.state.Current.ID
	syncer := a.syncer
	return a.run(func(ctx context.Context, seq uint64) session.Outcome {
		return syncer.Delete(ctx, seq, id)
	})
}

func (a *App) startMove() {
	if a.state.Searching {
		a.state.CloseSearch()
	}
	origin := ""
	if n := tree.FindFile(a.state.Tree, a.state.CurrentPath); n != nil {
		origin = n.ID
		a.cursorToRow(origin)
	} else if row, ok := a.currentRow(); ok {
		origin = row.Node.ID
	}

	if err := a.move.Grab(a.state.Current.ID, a.state.CurrentPath, origin); err != nil {
		a.notify(session.NoticeError, "move: "+err.Error())
		return
	}
	a.mode = ModeMove
	a.notify(session.NoticeInfo, "move: pick a folder or file, enter to drop")
}

func (a App) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Help), key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Quit):
		a.mode = ModeNormal
	}
	return a, nil
}

func (a App) handleListingMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Down):
		if a.listCursor < len(a.state.Listing)-1 {
			a.listCursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.listCursor > 0 {
			a.listCursor--
		}
	case key.Matches(msg, a.keys.Right):
		if a.listCursor < len(a.state.Listing) {
			e := a.state.Listing[a.listCursor]
			a.state.Clear()
			a.state.Select(e.TestCase, e.FilePath)
		}
		a.mode = ModeNormal
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Left):
		a.state.Clear()
		a.mode = ModeNormal
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	}
	return a, nil
}

// allMatches lists every entry, for an empty filter.
func allMatches(entries []model.Entry) []search.Result {
	out := make([]search.Result, len(entries))
	for i := range entries {
		out[i] = search.Result{Entry: &entries[i]}
	}
	return out
}

func (a App) handleFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.filter.Reset()
		a.mode = ModeNormal
		return a, nil

	case msg.Type == tea.KeyEnter:
		if e := a.filter.Selected(); e != nil {
			a.state.Clear()
			a.state.Select(e.TestCase, e.FilePath)
			a.cursorToFile(e.FilePath)
		}
		a.filter.Reset()
		a.mode = ModeNormal
		return a, nil

	case key.Matches(msg, listDown):
		if a.filter.Cursor < len(a.filter.Matches)-1 {
			a.filter.Cursor++
		}
		return a, nil

	case key.Matches(msg, listUp):
		if a.filter.Cursor > 0 {
			a.filter.Cursor--
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.filter.Input, cmd = a.filter.Input.Update(msg)
	query := strings.TrimSpace(a.filter.Input.Value())
	if query == "" {
		a.filter.Matches = allMatches(a.state.Snapshot.Listed())
	} else {
		a.filter.Matches = search.Filter(a.state.Snapshot.Listed(), query)
	}
	a.filter.Cursor = 0
	return a, cmd
}

func (a App) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.search.Blur()
		a.mode = ModeNormal
		return a, nil

	case msg.Type == tea.KeyEnter:
		query := strings.TrimSpace(a.search.Value())
		a.search.Blur()
		a.mode = ModeNormal
		if query == "" {
			a.state.CloseSearch()
			a.clampCursor()
			return a, nil
		}
		syncer := a.syncer
		return a, a.run(func(ctx context.Context, seq uint64) session.Outcome {
			return syncer.Search(ctx, seq, query)
		})
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a App) handleFormMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.state.Form
	if f == nil {
		a.mode = ModeNormal
		return a, nil
	}
	fs := &a.form

	switch {
	case key.Matches(msg, a.formKeys.Cancel):
		a.state.Form = nil
		a.mode = ModeNormal
		return a, nil

	case key.Matches(msg, a.formKeys.Submit):
		fs.sync(f)
		if err := f.Validate(); err != nil {
			a.notify(session.NoticeError, err.Error())
			return a, nil
		}
		submitted := f.Clone()
		syncer := a.syncer
		return a, a.run(func(ctx context.Context, seq uint64) session.Outcome {
			return syncer.Submit(ctx, seq, submitted)
		})

	case key.Matches(msg, a.formKeys.Next):
		fs.next()
		return a, nil

	case key.Matches(msg, a.formKeys.Prev):
		fs.prev()
		return a, nil

	case key.Matches(msg, a.formKeys.AddStep):
		fs.sync(f)
		i := f.AddStep()
		fs.rebuildSteps(f)
		fs.focus(fieldSteps + 2*i)
		return a, nil

	case key.Matches(msg, a.formKeys.RemoveStep):
		row, ok := fs.stepRow()
		if !ok {
			return a, nil
		}
		fs.sync(f)
		if err := f.RemoveStep(row); err != nil {
			a.notify(session.NoticeError, err.Error())
			return a, nil
		}
		fs.rebuildSteps(f)
		return a, nil

	case key.Matches(msg, a.formKeys.StepUp), key.Matches(msg, a.formKeys.StepDown):
		row, ok := fs.stepRow()
		if !ok {
			return a, nil
		}
		to := row + 1
		if key.Matches(msg, a.formKeys.StepUp) {
			to = row - 1
		}
		fs.sync(f)
		if err := f.MoveStep(row, to); err != nil {
			return a, nil
		}
		column := (fs.Focus - fieldSteps) % 2
		fs.rebuildSteps(f)
		fs.focus(fieldSteps + 2*to + column)
		return a, nil

	case key.Matches(msg, a.formKeys.Confirm):
		switch fs.Focus {
		case fieldTag:
			if f.AddTag(fs.Tag.Value()) {
				fs.Tag.Reset()
			}
		case fieldLevel:
			if f.AddLevel(fs.Level.Value()) {
				fs.Level.Reset()
			}
		default:
			fs.next()
		}
		return a, nil
	}

	if fs.Focus == fieldStatus {
		switch {
		case key.Matches(msg, a.formKeys.CycleLeft):
			f.Status = cycleStatus(f.Status, -1)
		case key.Matches(msg, a.formKeys.CycleRight):
			f.Status = cycleStatus(f.Status, 1)
		}
		return a, nil
	}

	// Backspace on an empty chip input removes the last chip
	if msg.Type == tea.KeyBackspace {
		switch {
		case fs.Focus == fieldTag && fs.Tag.Value() == "" && len(f.Tags) > 0:
			_ = f.RemoveTag(len(f.Tags) - 1)
			return a, nil
		case fs.Focus == fieldLevel && fs.Level.Value() == "" && len(f.Levels) > 0:
			_ = f.RemoveLevel(len(f.Levels) - 1)
			return a, nil
		}
	}

	in := fs.input(fs.Focus)
	if in == nil {
		return a, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	fs.sync(f)
	return a, cmd
}

func (a App) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, confirm):
		a.mode = ModeNormal
		if a.state.Current == nil {
			return a, nil
		}
		return a, a.deleteCurrent()
	case key.Matches(msg, cancel):
		a.mode = ModeNormal
	}
	return a, nil
}

func (a App) handleMkdirMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.mkdirInput.Blur()
		a.mode = ModeNormal
		return a, nil

	case msg.Type == tea.KeyEnter:
		name := strings.TrimSpace(a.mkdirInput.Value())
		if name == "" {
			a.notify(session.NoticeError, "directory name required")
			return a, nil
		}
		a.mkdirInput.Blur()
		a.mode = ModeNormal
		syncer := a.syncer
		return a, a.run(func(ctx context.Context, seq uint64) session.Outcome {
			return syncer.CreateDirectory(ctx, seq, name)
		})
	}

	var cmd tea.Cmd
	a.mkdirInput, cmd = a.mkdirInput.Update(msg)
	return a, cmd
}

func (a App) handleMoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := a.Rows()

	switch {
	case key.Matches(msg, a.keys.Back):
		origin, err := a.move.Done(false)
		if err == nil {
			a.cursorToRow(origin)
		}
		a.mode = ModeNormal
		a.notify(session.NoticeInfo, "move cancelled")
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(rows)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Left):
		a.collapse()

	case msg.String() == "l" || msg.Type == tea.KeyRight:
		if row, ok := a.currentRow(); ok && row.Node.IsFolder() && !row.Expanded {
			a.state.Expanded = tree.ToggleExpand(a.state.Expanded, row.Node.ID, true)
		}

	case msg.Type == tea.KeyEnter:
		row, ok := a.currentRow()
		if !ok {
			return a, nil
		}
		path, err := a.move.Release(row, a.defaultFile)
		if err != nil {
			a.notify(session.NoticeError, "move: "+err.Error())
			return a, nil
		}
		a.mode = ModeNormal
		tc := a.state.Current.Clone()
		syncer := a.syncer
		return a, a.run(func(ctx context.Context, seq uint64) session.Outcome {
			return syncer.Move(ctx, seq, tc, path)
		})
	}

	if row, ok := a.currentRow(); ok {
		_ = a.move.Over(row)
	}
	return a, nil
}

func (a App) handleReorderMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.state.Current == nil {
		a.mode = ModeNormal
		return a, nil
	}
	steps := a.state.Current.Actions

	if !a.reorder.Dragging() {
		switch {
		case key.Matches(msg, a.keys.Back):
			a.mode = ModeNormal
		case key.Matches(msg, a.keys.Down):
			if a.stepCursor < len(steps)-1 {
				a.stepCursor++
			}
		case key.Matches(msg, a.keys.Up):
			if a.stepCursor > 0 {
				a.stepCursor--
			}
		case key.Matches(msg, grab):
			if err := a.reorder.Grab(a.state.Current.ID, steps, a.stepCursor); err != nil {
				a.notify(session.NoticeError, "reorder: "+err.Error())
			}
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Back):
		origin := a.reorder.Origin()
		_, _ = a.reorder.Restore()
		if i, err := strconv.Atoi(origin); err == nil {
			a.stepCursor = i
		}

	case key.Matches(msg, a.keys.Down):
		_ = a.reorder.MoveDown()
		a.stepCursor = a.reorder.Cursor

	case key.Matches(msg, a.keys.Up):
		_ = a.reorder.MoveUp()
		a.stepCursor = a.reorder.Cursor

	case key.Matches(msg, grab):
		if !a.reorder.Changed() {
			_, _ = a.reorder.Restore()
			return a, nil
		}
		ordered, err := a.reorder.Release()
		if err != nil {
			if errors.Is(err, drag.ErrNoTarget) {
				_, _ = a.reorder.Restore()
			}
			a.notify(session.NoticeError, "reorder: "+err.Error())
			return a, nil
		}
		a.mode = ModeNormal
		id := a.reorder.TestCaseID
		syncer := a.syncer
		return a, a.run(func(ctx context.Context, seq uint64) session.Outcome {
			return syncer.Reorder(ctx, seq, id, ordered)
		})
	}
	return a, nil
}
