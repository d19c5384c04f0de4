// Package session holds the UI state of one tcm session and the actions
// that sync it with the backend.
//
// State has a single writer: the TUI's Update loop. Network work happens in
// Syncer, which returns an Outcome that the writer applies.
package session

import (
	"github.com/nikbrunner/tcm/internal/form"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/search"
	"github.com/nikbrunner/tcm/internal/tree"
)

// NoticeKind classifies the status line message.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeInfo
	NoticeSuccess
	NoticeError
)

// Notice is the message shown in the status line.
type Notice struct {
	Kind NoticeKind
	Text string
}

// EmptyFile is the notice for a file without test cases.
const EmptyFile = "no test cases in file"

// Vanished is the notice when a reload drops the displayed test case.
const Vanished = "test case no longer exists"

// State is everything the TUI displays. It is reset by each full reload.
type State struct {
	Snapshot *model.Snapshot
	Tree     []*tree.Node
	Expanded map[string]bool // folder node IDs, collapsed when absent

	Current     *model.TestCase // displayed test case, nil = placeholder
	CurrentPath string          // file of Current

	ListingPath string        // file whose test cases are listed
	Listing     []model.Entry // shown when a file holds several test cases

	Form *form.Form // open create/edit form, nil when closed

	SearchQuery string
	Results     []model.Entry
	Searching   bool // results replace the tree

	Notice   Notice
	InFlight int

	seq         uint64 // last issued request sequence
	snapshotSeq uint64 // sequence of the applied snapshot
}

// New returns an empty state.
func New() *State {
	return &State{
		Snapshot: model.NewSnapshot(),
		Expanded: map[string]bool{},
	}
}

// Issue reserves a sequence number for a request about to start.
func (s *State) Issue() uint64 {
	s.seq++
	s.InFlight++
	return s.seq
}

// Select displays tc, which lives in filePath, and expands the folders
// around it.
func (s *State) Select(tc model.TestCase, filePath string) {
	s.display(tc, filePath)
	s.reveal(filePath)
}

func (s *State) display(tc model.TestCase, filePath string) {
	c := tc.Clone()
	s.Current = &c
	s.CurrentPath = filePath
}

// Clear resets the display to the empty placeholder.
func (s *State) Clear() {
	s.Current = nil
	s.CurrentPath = ""
	s.Listing = nil
	s.ListingPath = ""
}

// ActionsVisible reports whether edit, duplicate, delete, move and reorder apply.
func (s *State) ActionsVisible() bool {
	return s.Current != nil
}

// SelectFile opens the file at path: its only test case is displayed
// directly, several are listed, none is an informational notice.
func (s *State) SelectFile(path string) {
	entries := s.Snapshot.EntriesInFile(path)
	switch len(entries) {
	case 0:
		s.Notice = Notice{Kind: NoticeInfo, Text: EmptyFile}
	case 1:
		s.Clear()
		s.Select(entries[0].TestCase, entries[0].FilePath)
	default:
		s.Clear()
		s.ListingPath = path
		s.Listing = entries
	}
}

// SetSnapshot replaces the snapshot and rebuilds the tree. Snapshots older
// than the applied one are dropped; the return value reports whether snap
// was applied. A displayed test case the new structure no longer lists is
// cleared. Folder expansion is left as the user set it.
func (s *State) SetSnapshot(seq uint64, snap *model.Snapshot) bool {
	if snap == nil || seq < s.snapshotSeq {
		return false
	}
	s.snapshotSeq = seq
	s.Snapshot = snap
	s.Tree = tree.Build(snap.Structure)

	if s.Current != nil {
		if e := snap.ListedEntry(s.Current.ID); e != nil {
			s.display(e.TestCase, e.FilePath)
		} else {
			s.Clear()
			s.Notice = Notice{Kind: NoticeInfo, Text: Vanished}
		}
	}
	if s.ListingPath != "" {
		s.Listing = snap.EntriesInFile(s.ListingPath)
	}
	return true
}

// CloseSearch returns from search results to the tree.
func (s *State) CloseSearch() {
	s.Searching = false
	s.SearchQuery = ""
	s.Results = nil
}

// SearchHeader is the title line of the results view.
func (s *State) SearchHeader() string {
	return search.Header(s.SearchQuery, len(s.Results))
}

// reveal expands the folders enclosing the file at path.
func (s *State) reveal(path string) {
	file := tree.FindFile(s.Tree, path)
	if file == nil {
		return
	}
	for _, id := range tree.Ancestors(s.Tree, file.ID) {
		s.Expanded = tree.ToggleExpand(s.Expanded, id, true)
	}
}

// Apply folds the result of one action into the state. A failed action
// leaves everything but the notice untouched.
func (s *State) Apply(o Outcome) {
	if s.InFlight > 0 {
		s.InFlight--
	}

	if o.Err != nil {
		s.Notice = Notice{Kind: NoticeError, Text: o.Err.Error()}
		return
	}

	s.SetSnapshot(o.Seq, o.Snapshot)

	switch o.Action {
	case ActionSearch:
		if o.Query == "" {
			s.CloseSearch()
			return
		}
		s.Searching = true
		s.SearchQuery = o.Query
		s.Results = o.Results
		if len(o.Results) == 0 {
			s.Notice = Notice{Kind: NoticeInfo, Text: search.EmptyResults}
			return
		}
	case ActionCreate, ActionUpdate:
		s.Form = nil
	}

	if o.Clear {
		s.Clear()
	}
	if o.TestCase != nil {
		path := o.FilePath
		if e := s.Snapshot.EntryByID(o.TestCase.ID); e != nil {
			path = e.FilePath
		}
		s.Listing, s.ListingPath = nil, ""
		s.Select(*o.TestCase, path)
	}

	switch {
	case o.RefetchErr != nil:
		s.Notice = Notice{Kind: NoticeError, Text: o.RefetchErr.Error()}
	case o.Notice != "":
		s.Notice = Notice{Kind: NoticeSuccess, Text: o.Notice}
	case o.Action == ActionSearch:
		s.Notice = Notice{}
	}
}
