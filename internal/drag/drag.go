// Package drag models the keyboard drag gestures of the TUI: moving a test
// case to another file and reordering the steps of a test case.
//
// A gesture is Idle, Dragging (an origin is held) or Settling (dropped on a
// target, waiting for the server). Settling ends in Commit or Rollback.
package drag

import (
	"errors"
	"fmt"
	"strings"
)

// Phase is the state of a gesture.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseSettling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseSettling:
		return "settling"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var (
	// ErrInvalidTransition is returned when an event does not apply to the current phase.
	ErrInvalidTransition = errors.New("invalid drag transition")
	// ErrNoTarget is returned when dropping without hovering a target.
	ErrNoTarget = errors.New("no drop target")
)

// Machine is the Idle -> Dragging(origin) -> Settling(target) state machine.
// The zero value is idle.
type Machine struct {
	phase  Phase
	origin string
	target string
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Origin returns what Begin picked up, or "" when idle.
func (m *Machine) Origin() string { return m.origin }

// Active reports whether a gesture is in progress.
func (m *Machine) Active() bool { return m.phase != PhaseIdle }

// Dragging reports whether an origin is held and no drop happened yet.
func (m *Machine) Dragging() bool { return m.phase == PhaseDragging }

// Settling reports whether a drop waits for Commit or Rollback.
func (m *Machine) Settling() bool { return m.phase == PhaseSettling }

func (m *Machine) transition(event string, from ...Phase) error {
	for _, p := range from {
		if m.phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, event, m.phase)
}

// Begin picks up origin.
func (m *Machine) Begin(origin string) error {
	if err := m.transition("begin", PhaseIdle); err != nil {
		return err
	}
	m.phase = PhaseDragging
	m.origin = origin
	m.target = ""
	return nil
}

// Hover records the target currently under the dragged item.
func (m *Machine) Hover(target string) error {
	if err := m.transition("hover", PhaseDragging); err != nil {
		return err
	}
	m.target = target
	return nil
}

// Drop releases the item on the hovered target and waits for Commit or Rollback.
func (m *Machine) Drop() (string, error) {
	if err := m.transition("drop", PhaseDragging); err != nil {
		return "", err
	}
	if m.target == "" {
		return "", ErrNoTarget
	}
	m.phase = PhaseSettling
	return m.target, nil
}

// Commit accepts the drop.
func (m *Machine) Commit() error {
	if err := m.transition("commit", PhaseSettling); err != nil {
		return err
	}
	m.reset()
	return nil
}

// Rollback abandons the gesture and returns the origin to restore.
func (m *Machine) Rollback() (string, error) {
	if err := m.transition("rollback", PhaseDragging, PhaseSettling); err != nil {
		return "", err
	}
	origin := m.origin
	m.reset()
	return origin, nil
}

func (m *Machine) reset() {
	*m = Machine{}
}

// DropPath computes the file a test case is moved to from the names along
// the drop row (ancestors first). A folder target gets defaultFile appended.
func DropPath(names []string, defaultFile string) (string, error) {
	parts := make([]string, 0, len(names)+1)
	for _, n := range names {
		if n = strings.Trim(strings.TrimSpace(n), "/"); n != "" {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoTarget
	}
	if !strings.HasSuffix(parts[len(parts)-1], ".json") {
		if defaultFile == "" {
			defaultFile = "test_cases.json"
		}
		parts = append(parts, defaultFile)
	}
	return strings.Join(parts, "/"), nil
}
