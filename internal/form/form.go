// Package form holds the create/edit state of a test case.
//
// Tags, levels and steps are first-class ordered collections; the TUI only
// renders them.
package form

import (
	"errors"
	"strings"

	"github.com/nikbrunner/tcm/internal/model"
)

// Mode is the form's purpose.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// ErrLastStep is returned when removing the only remaining step row.
var ErrLastStep = errors.New("cannot remove the only step")

// ErrOutOfRange is returned for an invalid row index.
var ErrOutOfRange = errors.New("index out of range")

// ValidationError reports required fields that are missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "required: " + strings.Join(e.Fields, ", ")
}

// Form is the editable state of one test case.
type Form struct {
	Mode         Mode
	EditID       string // original ID, edit mode only
	FilePath     string // create mode: target file, empty = backend default
	Title        string
	Author       string
	Status       model.Status
	UseCaseID    string
	Precondition string
	Tags         []string
	Levels       []string
	Steps        []model.Step

	// backend-managed fields carried through an edit untouched
	createdAt string
}

// NewCreate returns an empty form with one blank step row.
func NewCreate() *Form {
	return &Form{
		Mode:   ModeCreate,
		Status: model.StatusDraft,
		Tags:   []string{},
		Levels: []string{},
		Steps:  []model.Step{{}},
	}
}

// NewEdit returns a form pre-filled from tc.
func NewEdit(tc model.TestCase) *Form {
	c := tc.Clone()
	f := &Form{
		Mode:         ModeEdit,
		EditID:       c.ID,
		Title:        c.Title,
		Author:       c.Author,
		Status:       c.Status,
		UseCaseID:    c.UseCaseID,
		Precondition: c.Precondition,
		Tags:         c.Tags,
		Levels:       c.Levels,
		Steps:        c.Actions,
		createdAt:    c.CreatedAt,
	}
	if f.Status == "" {
		f.Status = model.StatusDraft
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	if f.Levels == nil {
		f.Levels = []string{}
	}
	if len(f.Steps) == 0 {
		f.Steps = []model.Step{{}}
	}
	return f
}

// Clone returns a deep copy, safe to hand to a background request.
func (f *Form) Clone() *Form {
	c := *f
	c.Tags = append([]string{}, f.Tags...)
	c.Levels = append([]string{}, f.Levels...)
	c.Steps = append([]model.Step{}, f.Steps...)
	return &c
}

// IsEdit returns true when the form edits an existing test case.
func (f *Form) IsEdit() bool {
	return f.Mode == ModeEdit
}

// AddTag appends a trimmed tag. Blank input is ignored; duplicates are kept.
func (f *Form) AddTag(tag string) bool {
	return appendChip(&f.Tags, tag)
}

// RemoveTag removes the tag at index i.
func (f *Form) RemoveTag(i int) error {
	return removeChip(&f.Tags, i)
}

// AddLevel appends a trimmed level. Blank input is ignored; duplicates are kept.
func (f *Form) AddLevel(level string) bool {
	return appendChip(&f.Levels, level)
}

// RemoveLevel removes the level at index i.
func (f *Form) RemoveLevel(i int) error {
	return removeChip(&f.Levels, i)
}

func appendChip(list *[]string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	*list = append(*list, v)
	return true
}

func removeChip(list *[]string, i int) error {
	if i < 0 || i >= len(*list) {
		return ErrOutOfRange
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
	return nil
}

// AddStep appends a blank step row and returns its index.
func (f *Form) AddStep() int {
	f.Steps = append(f.Steps, model.Step{})
	return len(f.Steps) - 1
}

// CanRemoveStep reports whether a step row may be removed.
func (f *Form) CanRemoveStep() bool {
	return len(f.Steps) > 1
}

// RemoveStep removes the step row at index i. The last row stays.
func (f *Form) RemoveStep(i int) error {
	if i < 0 || i >= len(f.Steps) {
		return ErrOutOfRange
	}
	if !f.CanRemoveStep() {
		return ErrLastStep
	}
	f.Steps = append(f.Steps[:i], f.Steps[i+1:]...)
	return nil
}

// SetStep replaces the text of step row i.
func (f *Form) SetStep(i int, action, expected string) error {
	if i < 0 || i >= len(f.Steps) {
		return ErrOutOfRange
	}
	f.Steps[i] = model.Step{Step: action, ExpectedRes: expected}
	return nil
}

// MoveStep moves step row from to index to.
func (f *Form) MoveStep(from, to int) error {
	if from < 0 || from >= len(f.Steps) || to < 0 || to >= len(f.Steps) {
		return ErrOutOfRange
	}
	s := f.Steps[from]
	f.Steps = append(f.Steps[:from], f.Steps[from+1:]...)
	f.Steps = append(f.Steps[:to], append([]model.Step{s}, f.Steps[to:]...)...)
	return nil
}

// Validate checks the required fields after trimming.
func (f *Form) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(f.Author) == "" {
		missing = append(missing, "author")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Build validates the form and returns the test case to submit.
// In create mode the ID is left empty for the backend to assign.
func (f *Form) Build() (model.TestCase, error) {
	if err := f.Validate(); err != nil {
		return model.TestCase{}, err
	}

	steps := make([]model.Step, 0, len(f.Steps))
	for _, s := range f.Steps {
		action := strings.TrimSpace(s.Step)
		expected := strings.TrimSpace(s.ExpectedRes)
		if action == "" && expected == "" {
			continue
		}
		steps = append(steps, model.Step{Step: action, ExpectedRes: expected})
	}

	tc := model.TestCase{
		Title:        strings.TrimSpace(f.Title),
		Author:       strings.TrimSpace(f.Author),
		Status:       f.Status,
		UseCaseID:    strings.TrimSpace(f.UseCaseID),
		Precondition: strings.TrimSpace(f.Precondition),
		Tags:         append([]string{}, f.Tags...),
		Levels:       append([]string{}, f.Levels...),
		Actions:      steps,
	}
	if f.IsEdit() {
		tc.ID = f.EditID
		tc.CreatedAt = f.createdAt
	}
	return tc, nil
}
