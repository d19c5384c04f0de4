package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nikbrunner/tcm/internal/form"
	"github.com/nikbrunner/tcm/internal/model"
)

// Backend is the subset of api.Client the session needs.
type Backend interface {
	List(ctx context.Context) (*model.Snapshot, error)
	Search(ctx context.Context, query string) ([]model.Entry, error)
	CreateIn(ctx context.Context, tc model.TestCase, filePath string) (*model.TestCase, error)
	Update(ctx context.Context, id string, tc model.TestCase) (*model.TestCase, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string) (*model.TestCase, error)
	Move(ctx context.Context, id, filePath string) error
	ReorderSteps(ctx context.Context, id string, steps []model.Step) (*model.TestCase, error)
	CreateDirectory(ctx context.Context, name string) error
}

// Action names the user action an Outcome belongs to.
type Action string

const (
	ActionLoad      Action = "load"
	ActionSearch    Action = "search"
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionDuplicate Action = "duplicate"
	ActionMove      Action = "move"
	ActionReorder   Action = "reorder"
	ActionMkdir     Action = "mkdir"
)

// Outcome is the result of one action, ready to be applied to State.
type Outcome struct {
	Seq    uint64
	Action Action

	Err        error // the action failed, nothing is applied
	RefetchErr error // the action succeeded but the reload failed

	Snapshot *model.Snapshot // fresh list + structure
	TestCase *model.TestCase // entity to display
	FilePath string          // file of TestCase when the snapshot is missing
	Clear    bool            // reset the display to the placeholder

	Query   string
	Results []model.Entry

	Notice string // success message
}

// Syncer runs actions against the backend. Every mutation is followed by
// a full reload; there are no retries and no partial updates.
type Syncer struct {
	backend Backend
	logger  *slog.Logger
}

// NewSyncer creates a Syncer. A nil logger discards.
func NewSyncer(backend Backend, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Syncer{backend: backend, logger: logger}
}

// Load fetches the list and structure.
func (s *Syncer) Load(ctx context.Context, seq uint64) Outcome {
	o := Outcome{Seq: seq, Action: ActionLoad}
	snap, err := s.backend.List(ctx)
	if err != nil {
		o.Err = err
		s.logger.Error("load failed", "err", err)
		return o
	}
	s.check(snap)
	o.Snapshot = snap
	return o
}

// Search queries the backend.
func (s *Syncer) Search(ctx context.Context, seq uint64, query string) Outcome {
	o := Outcome{Seq: seq, Action: ActionSearch, Query: strings.TrimSpace(query)}
	results, err := s.backend.Search(ctx, o.Query)
	if err != nil {
		o.Err = err
		return o
	}
	o.Results = results
	return o
}

// Submit validates f and creates or updates the test case. A form that
// fails validation issues no request.
func (s *Syncer) Submit(ctx context.Context, seq uint64, f *form.Form) Outcome {
	action := ActionCreate
	if f.IsEdit() {
		action = ActionUpdate
	}
	o := Outcome{Seq: seq, Action: action}

	tc, err := f.Build()
	if err != nil {
		o.Err = err
		return o
	}

	var saved *model.TestCase
	if f.IsEdit() {
		saved, err = s.backend.Update(ctx, f.EditID, tc)
		o.Notice = "test case updated"
	} else {
		saved, err = s.backend.CreateIn(ctx, tc, f.FilePath)
		o.Notice = "test case created"
	}
	if err != nil {
		o.Err = err
		o.Notice = ""
		return o
	}
	o.TestCase = saved
	s.refetch(ctx, &o)
	return o
}

// Delete removes the test case and clears the display.
func (s *Syncer) Delete(ctx context.Context, seq uint64, id string) Outcome {
	o := Outcome{Seq: seq, Action: ActionDelete}
	if err := s.backend.Delete(ctx, id); err != nil {
		o.Err = err
		return o
	}
	o.Clear = true
	o.Notice = "test case deleted"
	s.refetch(ctx, &o)
	return o
}

// Duplicate copies the test case and displays the copy.
func (s *Syncer) Duplicate(ctx context.Context, seq uint64, id string) Outcome {
	o := Outcome{Seq: seq, Action: ActionDuplicate}
	dup, err := s.backend.Duplicate(ctx, id)
	if err != nil {
		o.Err = err
		return o
	}
	o.TestCase = dup
	o.Notice = "test case duplicated"
	s.refetch(ctx, &o)
	return o
}

// Move relocates the test case to filePath.
func (s *Syncer) Move(ctx context.Context, seq uint64, tc model.TestCase, filePath string) Outcome {
	o := Outcome{Seq: seq, Action: ActionMove}
	if err := s.backend.Move(ctx, tc.ID, filePath); err != nil {
		o.Err = err
		return o
	}
	o.TestCase = &tc
	o.FilePath = filePath
	o.Notice = "moved to " + filePath
	s.refetch(ctx, &o)
	return o
}

// Reorder submits the full step order and displays the confirmed test case.
func (s *Syncer) Reorder(ctx context.Context, seq uint64, id string, steps []model.Step) Outcome {
	o := Outcome{Seq: seq, Action: ActionReorder}
	tc, err := s.backend.ReorderSteps(ctx, id, steps)
	if err != nil {
		o.Err = err
		return o
	}
	o.TestCase = tc
	o.Notice = "steps reordered"
	s.refetch(ctx, &o)
	return o
}

// CreateDirectory creates a folder.
func (s *Syncer) CreateDirectory(ctx context.Context, seq uint64, name string) Outcome {
	o := Outcome{Seq: seq, Action: ActionMkdir}
	if err := s.backend.CreateDirectory(ctx, strings.TrimSpace(name)); err != nil {
		o.Err = err
		return o
	}
	o.Notice = "directory created"
	s.refetch(ctx, &o)
	return o
}

func (s *Syncer) refetch(ctx context.Context, o *Outcome) {
	snap, err := s.backend.List(ctx)
	if err != nil {
		s.logger.Warn("reload after action failed", "action", o.Action, "err", err)
		o.RefetchErr = err
		return
	}
	s.check(snap)
	o.Snapshot = snap
}

// check logs snapshot inconsistencies. The UI hides the affected entries.
func (s *Syncer) check(snap *model.Snapshot) {
	for _, p := range snap.Problems() {
		s.logger.Warn("inconsistent snapshot", "problem", p)
	}
}
