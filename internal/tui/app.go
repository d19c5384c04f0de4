// Package tui is the interactive terminal client. App.Update is the only
// writer of session.State; backend calls run as tea.Cmds and come back as
// outcome messages.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/tcm/internal/drag"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/session"
	"github.com/nikbrunner/tcm/internal/storage"
	"github.com/nikbrunner/tcm/internal/tree"
	"github.com/nikbrunner/tcm/internal/tui/layout"
)

// outcomeMsg carries the result of one backend action back to Update.
type outcomeMsg session.Outcome

// App is the main bubbletea model for the test-case manager.
type App struct {
	state  *session.State
	syncer *session.Syncer
	cache  storage.Storage
	logger *slog.Logger

	keys         KeyMap
	formKeys     FormKeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	serverURL     string
	defaultFile   string
	confirmDelete bool
	timeout       time.Duration
	copyText      func(string) error

	mode        Mode
	cursor      int // tree row, or search result while searching
	listCursor  int // file listing
	stepCursor  int // step under the cursor while reordering
	lastKeyWasG bool

	form       FormState
	filter     FilterState
	search     textinput.Model
	mkdirInput textinput.Model

	move    drag.FileMove
	reorder drag.StepReorder

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Backend      session.Backend
	Config       *storage.Config      // optional, uses defaults if nil
	Cache        storage.Storage      // optional snapshot cache
	Logger       *slog.Logger         // optional, discards if nil
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Clipboard    func(string) error   // optional, uses the system clipboard if nil
}

// NewApp creates a new App with the given parameters. A cached snapshot,
// if any, is shown until the first load completes.
func NewApp(params AppParams) App {
	cfg := storage.DefaultConfig()
	if params.Config != nil {
		cfg = *params.Config
	}

	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	search := newInput("Search title, id, tags...", "", layoutCfg.Input.SearchCharLimit, layoutCfg.Input.StandardWidth)
	mkdir := newInput("folder/name", "", layoutCfg.Input.NameCharLimit, layoutCfg.Input.StandardWidth)

	app := App{
		state:         session.New(),
		syncer:        session.NewSyncer(params.Backend, logger),
		cache:         params.Cache,
		logger:        logger,
		keys:          keys,
		formKeys:      DefaultFormKeyMap(),
		styles:        styles,
		layoutConfig:  layoutCfg,
		serverURL:     cfg.ServerURL,
		defaultFile:   cfg.DefaultFileName,
		confirmDelete: cfg.ConfirmDelete,
		timeout:       cfg.RequestTimeout(),
		copyText:      copyFn,
		filter:        NewFilterState(layoutCfg),
		search:        search,
		mkdirInput:    mkdir,
		width:         80,
		height:        24,
	}

	if app.cache != nil {
		snap, err := app.cache.Load()
		if err != nil {
			logger.Warn("cannot read snapshot cache", "err", err)
		} else if len(snap.Entries) > 0 || len(snap.Structure) > 0 {
			app.state.SetSnapshot(0, snap)
		}
	}

	return app
}

// WithDimensions returns a copy of the App with the given size.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// State exposes the session state for inspection.
func (a App) State() *session.State {
	return a.state
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// Cursor returns the current cursor position in the left pane.
func (a App) Cursor() int {
	return a.cursor
}

// Rows returns the visible tree rows.
func (a App) Rows() []tree.Row {
	return tree.Flatten(a.state.Tree, a.state.Expanded)
}

// Init implements tea.Model. It starts the initial load.
func (a App) Init() tea.Cmd {
	return a.run(a.syncer.Load)
}

// run reserves a sequence number and executes action off the event loop.
func (a App) run(action func(ctx context.Context, seq uint64) session.Outcome) tea.Cmd {
	seq := a.state.Issue()
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return outcomeMsg(action(ctx, seq))
	}
}

// saveCache writes snap to the snapshot cache.
func (a App) saveCache(snap *model.Snapshot) tea.Cmd {
	if a.cache == nil || snap == nil {
		return nil
	}
	cache, logger := a.cache, a.logger
	return func() tea.Msg {
		if err := cache.Save(snap); err != nil {
			logger.Warn("cannot write snapshot cache", "err", err)
		}
		return nil
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case outcomeMsg:
		return a.applyOutcome(session.Outcome(msg))

	case tea.KeyMsg:
		switch a.mode {
		case ModeHelp:
			return a.handleHelpMode(msg)
		case ModeListing:
			return a.handleListingMode(msg)
		case ModeFilter:
			return a.handleFilterMode(msg)
		case ModeSearch:
			return a.handleSearchMode(msg)
		case ModeForm:
			return a.handleFormMode(msg)
		case ModeConfirmDelete:
			return a.handleConfirmDeleteMode(msg)
		case ModeMkdir:
			return a.handleMkdirMode(msg)
		case ModeMove:
			return a.handleMoveMode(msg)
		case ModeReorder:
			return a.handleReorderMode(msg)
		default:
			return a.handleNormalMode(msg)
		}
	}

	return a, nil
}

// applyOutcome finishes any gesture waiting on the outcome and folds it
// into the state.
func (a App) applyOutcome(o session.Outcome) (tea.Model, tea.Cmd) {
	failed := o.Err != nil

	switch o.Action {
	case session.ActionMove:
		if a.move.Settling() {
			origin, err := a.move.Done(!failed)
			if err == nil && failed {
				a.cursorToRow(origin)
			}
		}
	case session.ActionReorder:
		if a.reorder.Settling() {
			if failed {
				_, _ = a.reorder.Restore()
			} else {
				_ = a.reorder.Confirm()
			}
		}
	}

	prev := a.state.Snapshot
	a.state.Apply(o)

	if a.mode == ModeForm && a.state.Form == nil {
		a.mode = ModeNormal
	}
	if a.mode == ModeListing && len(a.state.Listing) == 0 {
		a.mode = ModeNormal
	}
	if o.Action == session.ActionSearch && !failed {
		a.cursor = 0
	}
	if o.TestCase != nil && a.state.Current != nil && !a.state.Searching {
		a.cursorToFile(a.state.CurrentPath)
	}
	a.clampCursor()

	var cmd tea.Cmd
	if a.state.Snapshot != prev {
		cmd = a.saveCache(a.state.Snapshot)
	}
	return a, cmd
}

// leftLen is the number of rows in the left pane.
func (a App) leftLen() int {
	if a.state.Searching {
		return len(a.state.Results)
	}
	return len(a.Rows())
}

func (a *App) clampCursor() {
	n := a.leftLen()
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	if a.listCursor >= len(a.state.Listing) {
		a.listCursor = 0
	}
}

// cursorToRow moves the tree cursor to the row with the given node ID.
func (a *App) cursorToRow(id string) {
	if i := tree.RowIndex(a.Rows(), id); i >= 0 {
		a.cursor = i
	}
}

// cursorToFile moves the tree cursor to the file at path.
func (a *App) cursorToFile(path string) {
	if n := tree.FindFile(a.state.Tree, path); n != nil {
		a.cursorToRow(n.ID)
	}
}

// currentRow returns the tree row under the cursor.
func (a App) currentRow() (tree.Row, bool) {
	rows := a.Rows()
	if a.state.Searching || a.cursor < 0 || a.cursor >= len(rows) {
		return tree.Row{}, false
	}
	return rows[a.cursor], true
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
