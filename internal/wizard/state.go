// Package wizard sequences the four ideation steps a founder walks through
// (problem/solution, persona, lean canvas, pitch deck), each backed by its
// own phase machine, and gates the whole flow behind an authenticated
// session.
package wizard

import (
	"errors"
	"fmt"
)

// Phase is a step controller's position in its local state machine.
type Phase string

const (
	// PhaseInput collects raw user fields; nothing is persisted yet.
	PhaseInput Phase = "input"
	// PhaseBuild is the lean canvas flavor of the input phase: the nine
	// boxes are edited and AI-suggested in place.
	PhaseBuild Phase = "build"
	// PhaseSelect is the pitch deck flavor of the input phase: slide types
	// are picked before generation.
	PhaseSelect Phase = "select"
	// PhaseReview holds an editable generated draft.
	PhaseReview Phase = "review"
	// PhaseComplete means the draft has been committed to the concept.
	PhaseComplete Phase = "complete"
)

var (
	ErrGenerationInFlight = errors.New("a generation is already running for this step")
	ErrNotAvailable       = errors.New("operation not available in the current phase")
)

// ValidationError blocks an action because required fields are missing. It
// maps to a user-facing notice, not a server fault.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// InvalidTransitionError reports a phase change the step's transition table
// does not allow.
type InvalidTransitionError struct {
	From, To Phase
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid phase transition %s -> %s", e.From, e.To)
}

// machine is a tiny explicit state machine: a current phase plus the table of
// allowed transitions. Constructing a controller with an initial phase not in
// its table is a programming error and panics at construction.
type machine struct {
	phase       Phase
	transitions map[Phase][]Phase
}

func newMachine(initial Phase, transitions map[Phase][]Phase) *machine {
	if _, ok := transitions[initial]; !ok {
		panic(fmt.Sprintf("wizard: initial phase %q not in transition table", initial))
	}
	return &machine{phase: initial, transitions: transitions}
}

func (m *machine) current() Phase { return m.phase }

func (m *machine) can(next Phase) bool {
	for _, p := range m.transitions[m.phase] {
		if p == next {
			return true
		}
	}
	return false
}

// to moves the machine to next, or returns InvalidTransitionError. Staying in
// the current phase is always allowed (regenerate keeps the review phase).
func (m *machine) to(next Phase) error {
	if next == m.phase {
		return nil
	}
	if !m.can(next) {
		return InvalidTransitionError{From: m.phase, To: next}
	}
	m.phase = next
	return nil
}
