package drag

import (
	"errors"
	"strconv"

	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/tree"
)

// ErrSameFile is returned when a test case is dropped on the file it is in.
var ErrSameFile = errors.New("already in that file")

// FileMove drags one test case from its tree row to another folder or file.
type FileMove struct {
	Machine
	EntryID    string // test case being moved
	SourceFile string // file the test case is in
}

// Grab starts moving entryID, which sits in sourceFile and is shown on originRow.
func (f *FileMove) Grab(entryID, sourceFile, originRow string) error {
	if err := f.Begin(originRow); err != nil {
		return err
	}
	f.EntryID = entryID
	f.SourceFile = sourceFile
	return nil
}

// Over hovers the given tree row.
func (f *FileMove) Over(row tree.Row) error {
	return f.Hover(row.Node.ID)
}

// Release drops on row and returns the target file path.
func (f *FileMove) Release(row tree.Row, defaultFile string) (string, error) {
	if err := f.Over(row); err != nil {
		return "", err
	}
	path, err := DropPath(row.Names(), defaultFile)
	if err != nil {
		return "", err
	}
	if row.Node.Kind == tree.KindFile && row.Node.FilePath != "" {
		path = row.Node.FilePath
	}
	if path == f.SourceFile {
		return "", ErrSameFile
	}
	if _, err := f.Drop(); err != nil {
		return "", err
	}
	return path, nil
}

// Done commits or rolls back the settled move and clears the gesture.
// It returns the origin row to restore the cursor to on failure.
func (f *FileMove) Done(ok bool) (string, error) {
	defer func() { f.EntryID, f.SourceFile = "", "" }()
	if ok {
		return "", f.Commit()
	}
	return f.Rollback()
}

// StepReorder drags a step within a working copy of a test case's steps.
type StepReorder struct {
	Machine
	TestCaseID string
	Working    []model.Step // order shown while dragging
	Cursor     int          // index of the held step in Working

	original []model.Step
}

// Grab picks up step index of steps.
func (s *StepReorder) Grab(testCaseID string, steps []model.Step, index int) error {
	if index < 0 || index >= len(steps) {
		return ErrNoTarget
	}
	if err := s.Begin(strconv.Itoa(index)); err != nil {
		return err
	}
	s.TestCaseID = testCaseID
	s.original = append([]model.Step{}, steps...)
	s.Working = append([]model.Step{}, steps...)
	s.Cursor = index
	return s.Hover(strconv.Itoa(index))
}

// MoveUp moves the held step one position up.
func (s *StepReorder) MoveUp() error {
	return s.move(-1)
}

// MoveDown moves the held step one position down.
func (s *StepReorder) MoveDown() error {
	return s.move(1)
}

func (s *StepReorder) move(delta int) error {
	if !s.Dragging() {
		return ErrInvalidTransition
	}
	next := s.Cursor + delta
	if next < 0 || next >= len(s.Working) {
		return nil
	}
	s.Working[s.Cursor], s.Working[next] = s.Working[next], s.Working[s.Cursor]
	s.Cursor = next
	return s.Hover(strconv.Itoa(next))
}

// Changed reports whether the working order differs from the original.
func (s *StepReorder) Changed() bool {
	for i := range s.Working {
		if s.Working[i] != s.original[i] {
			return true
		}
	}
	return false
}

// Release drops the held step and returns the full ordered list to submit.
func (s *StepReorder) Release() ([]model.Step, error) {
	if _, err := s.Drop(); err != nil {
		return nil, err
	}
	return append([]model.Step{}, s.Working...), nil
}

// Confirm ends a successful reorder.
func (s *StepReorder) Confirm() error {
	if err := s.Commit(); err != nil {
		return err
	}
	s.clear()
	return nil
}

// Restore abandons the reorder and returns the original order.
func (s *StepReorder) Restore() ([]model.Step, error) {
	original := s.original
	if _, err := s.Rollback(); err != nil {
		return nil, err
	}
	s.clear()
	return original, nil
}

func (s *StepReorder) clear() {
	s.TestCaseID = ""
	s.Working = nil
	s.Cursor = 0
	s.original = nil
}
