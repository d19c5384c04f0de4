package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/nikbrunner/tcm/internal/form"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/search"
	"github.com/nikbrunner/tcm/internal/tui/layout"
)

// Mode is the current interaction mode of the App.
type Mode int

const (
	ModeNormal        Mode = iota
	ModeListing            // choosing a test case of a multi-case file
	ModeFilter             // local fuzzy filter over the loaded list
	ModeSearch             // global search query input
	ModeForm               // create/edit form
	ModeConfirmDelete      // delete confirmation
	ModeMkdir              // new directory modal
	ModeMove               // moving the current test case to another file
	ModeReorder            // reordering steps of the current test case
	ModeHelp
)

// Form fields in focus order. Step rows follow fieldSteps, two fields each.
const (
	fieldTitle = iota
	fieldAuthor
	fieldStatus
	fieldUseCase
	fieldPrecondition
	fieldTag
	fieldLevel
	fieldSteps
)

// stepInputs is one editable step row.
type stepInputs struct {
	Action   textinput.Model
	Expected textinput.Model
}

// FormState holds the text inputs of the open create/edit form.
// The form.Form in session.State stays the source of truth; inputs are
// written back into it after every keystroke.
type FormState struct {
	Title        textinput.Model
	Author       textinput.Model
	UseCase      textinput.Model
	Precondition textinput.Model
	Tag          textinput.Model // pending tag, added on enter
	Level        textinput.Model // pending level, added on enter
	Steps        []stepInputs
	Focus        int

	cfg layout.InputConfig
}

// NewFormState creates inputs pre-filled from f.
func NewFormState(f *form.Form, cfg layout.InputConfig) FormState {
	s := FormState{
		Title:        newInput("Title", f.Title, cfg.TitleCharLimit, cfg.StandardWidth),
		Author:       newInput("Author", f.Author, cfg.TitleCharLimit, cfg.StandardWidth),
		UseCase:      newInput("Use case ID", f.UseCaseID, cfg.TitleCharLimit, cfg.StandardWidth),
		Precondition: newInput("Precondition (optional)", f.Precondition, cfg.TextCharLimit, cfg.StandardWidth),
		Tag:          newInput("add tag, enter", "", cfg.ChipCharLimit, cfg.FilterWidth),
		Level:        newInput("add level, enter", "", cfg.ChipCharLimit, cfg.FilterWidth),
		cfg:          cfg,
	}
	s.rebuildSteps(f)
	s.focus(fieldTitle)
	return s
}

func newInput(placeholder, value string, limit, width int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = width
	in.SetValue(value)
	return in
}

// rebuildSteps recreates the step rows from f, keeping focus in range.
func (s *FormState) rebuildSteps(f *form.Form) {
	s.Steps = make([]stepInputs, len(f.Steps))
	for i, step := range f.Steps {
		s.Steps[i] = stepInputs{
			Action:   newInput("Action", step.Step, s.cfg.TextCharLimit, s.cfg.StepWidth),
			Expected: newInput("Expected result", step.ExpectedRes, s.cfg.TextCharLimit, s.cfg.StepWidth),
		}
	}
	if s.Focus >= s.fieldCount() {
		s.Focus = s.fieldCount() - 1
	}
	s.focus(s.Focus)
}

func (s *FormState) fieldCount() int {
	return fieldSteps + 2*len(s.Steps)
}

// input returns the text input of field i, nil for the status selector.
func (s *FormState) input(i int) *textinput.Model {
	switch i {
	case fieldTitle:
		return &s.Title
	case fieldAuthor:
		return &s.Author
	case fieldUseCase:
		return &s.UseCase
	case fieldPrecondition:
		return &s.Precondition
	case fieldTag:
		return &s.Tag
	case fieldLevel:
		return &s.Level
	case fieldStatus:
		return nil
	}
	row, expected := (i-fieldSteps)/2, (i-fieldSteps)%2 == 1
	if row < 0 || row >= len(s.Steps) {
		return nil
	}
	if expected {
		return &s.Steps[row].Expected
	}
	return &s.Steps[row].Action
}

func (s *FormState) focus(i int) {
	for f := 0; f < s.fieldCount(); f++ {
		if in := s.input(f); in != nil {
			in.Blur()
		}
	}
	s.Focus = i
	if in := s.input(i); in != nil {
		in.Focus()
	}
}

func (s *FormState) next() {
	s.focus((s.Focus + 1) % s.fieldCount())
}

func (s *FormState) prev() {
	s.focus((s.Focus - 1 + s.fieldCount()) % s.fieldCount())
}

// stepRow returns the step row under focus.
func (s *FormState) stepRow() (int, bool) {
	if s.Focus < fieldSteps {
		return 0, false
	}
	return (s.Focus - fieldSteps) / 2, true
}

// sync writes the input values back into f.
func (s *FormState) sync(f *form.Form) {
	f.Title = s.Title.Value()
	f.Author = s.Author.Value()
	f.UseCaseID = s.UseCase.Value()
	f.Precondition = s.Precondition.Value()
	for i, row := range s.Steps {
		_ = f.SetStep(i, row.Action.Value(), row.Expected.Value())
	}
}

// cycleStatus steps through the known statuses. An unknown status starts
// the cycle from the first one.
func cycleStatus(current model.Status, delta int) model.Status {
	idx := -1
	for i, st := range model.Statuses {
		if st == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Statuses[0]
	}
	n := len(model.Statuses)
	return model.Statuses[((idx+delta)%n+n)%n]
}

// FilterState holds the local fuzzy filter.
type FilterState struct {
	Input   textinput.Model
	Matches []search.Result
	Cursor  int
}

// NewFilterState creates an empty FilterState.
func NewFilterState(cfg layout.LayoutConfig) FilterState {
	return FilterState{
		Input: newInput("Filter...", "", cfg.Input.FilterCharLimit, cfg.Input.FilterWidth),
	}
}

// Reset clears the filter.
func (f *FilterState) Reset() {
	f.Input.Reset()
	f.Input.Blur()
	f.Matches = nil
	f.Cursor = 0
}

// Selected returns the match under the cursor, or nil.
func (f *FilterState) Selected() *model.Entry {
	if f.Cursor < 0 || f.Cursor >= len(f.Matches) {
		return nil
	}
	return f.Matches[f.Cursor].Entry
}
