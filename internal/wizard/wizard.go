// Package wizard implements the four-step guided review flow:
// overview → subprocess → task → confirmation.
//
// Moving back is always allowed and drops the selections of the levels being
// left. Moving forward needs the parent selection for the target step; without
// it the move is held as pending until the reviewer confirms or declines the
// skip warning.
package wizard

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/procreview/internal/domain"
)

// Step is one stage of the review flow.
type Step int

const (
	StepOverview Step = iota
	StepSubprocess
	StepTask
	StepConfirmation
)

// Steps lists every step in flow order.
var Steps = []Step{StepOverview, StepSubprocess, StepTask, StepConfirmation}

func (s Step) String() string {
	switch s {
	case StepOverview:
		return "overview"
	case StepSubprocess:
		return "subprocess"
	case StepTask:
		return "task"
	case StepConfirmation:
		return "confirmation"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Label is the human-facing stepper caption.
func (s Step) Label() string {
	switch s {
	case StepOverview:
		return "Process Overview"
	case StepSubprocess:
		return "Subprocess Review"
	case StepTask:
		return "Task Review"
	case StepConfirmation:
		return "Final Confirmation"
	default:
		return s.String()
	}
}

// ParseStep converts a step name back into a Step.
func ParseStep(name string) (Step, error) {
	for _, s := range Steps {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown wizard step %q", name)
}

// ErrNothingPending is returned by ConfirmSkip and DeclineSkip when no
// guarded transition is waiting.
var ErrNothingPending = errors.New("no pending step transition")

// Outcome reports what a navigation request did.
type Outcome int

const (
	// Unchanged means the target was already the current step.
	Unchanged Outcome = iota
	// Moved means the current step changed.
	Moved
	// NeedsConfirmation means the move is pending behind a skip warning.
	NeedsConfirmation
)

// Warning explains why a forward move needs confirmation.
type Warning struct {
	Target  Step
	Message string
}

// SkipNotice is shown when a reviewer confirms skipping a prerequisite.
const SkipNotice = "Skipping required steps may result in incomplete review"

// Machine tracks the current step and the process/subprocess selections.
// The zero value is not usable; call New.
type Machine struct {
	step         Step
	processID    string
	subprocessID string
	pending      *Step
}

// New returns a machine at the overview step with nothing selected.
func New() *Machine {
	return &Machine{step: StepOverview}
}

// Step returns the current step.
func (m *Machine) Step() Step { return m.step }

// ProcessID returns the selected process id, or "".
func (m *Machine) ProcessID() string { return m.processID }

// SubprocessID returns the selected subprocess id, or "".
func (m *Machine) SubprocessID() string { return m.subprocessID }

// Pending returns the step waiting on skip confirmation.
func (m *Machine) Pending() (Step, bool) {
	if m.pending == nil {
		return 0, false
	}
	return *m.pending, true
}

// Navigate requests a move to target, as a stepper click would.
func (m *Machine) Navigate(target Step) (Outcome, *Warning) {
	if target == m.step {
		return Unchanged, nil
	}
	if target < m.step {
		m.pending = nil
		m.step = target
		switch target {
		case StepOverview:
			m.processID = ""
			m.subprocessID = ""
		case StepSubprocess:
			m.subprocessID = ""
		}
		return Moved, nil
	}
	if msg, missing := m.missingPrerequisite(target); missing {
		t := target
		m.pending = &t
		return NeedsConfirmation, &Warning{Target: target, Message: msg}
	}
	m.pending = nil
	m.step = target
	return Moved, nil
}

func (m *Machine) missingPrerequisite(target Step) (string, bool) {
	switch target {
	case StepSubprocess:
		if m.processID == "" {
			return "You need to select a process before reviewing subprocesses.", true
		}
	case StepTask:
		if m.subprocessID == "" {
			return "You need to select a subprocess before reviewing tasks.", true
		}
	case StepConfirmation:
		if m.processID == "" {
			return "You need to select a process before finalizing the review.", true
		}
	}
	return "", false
}

// ConfirmSkip applies the pending transition without its prerequisite.
func (m *Machine) ConfirmSkip() (Step, error) {
	if m.pending == nil {
		return m.step, ErrNothingPending
	}
	m.step = *m.pending
	m.pending = nil
	return m.step, nil
}

// DeclineSkip drops the pending transition and stays on the current step.
func (m *Machine) DeclineSkip() error {
	if m.pending == nil {
		return ErrNothingPending
	}
	m.pending = nil
	return nil
}

// SelectProcess records a process chosen from a list and clears the
// subprocess. Outside confirmation the step follows the selection.
func (m *Machine) SelectProcess(id string) {
	m.processID = id
	m.subprocessID = ""
	m.syncStep()
}

// SelectSubprocess records a subprocess chosen from a list.
func (m *Machine) SelectSubprocess(id string) {
	m.subprocessID = id
	m.syncStep()
}

// Back leaves confirmation for the task step, keeping selections. On any
// other step it behaves like navigating one step back.
func (m *Machine) Back() {
	switch m.step {
	case StepOverview:
		return
	case StepConfirmation:
		m.pending = nil
		m.step = StepTask
	default:
		m.Navigate(m.step - 1)
	}
}

// Reset returns to the overview step with nothing selected.
func (m *Machine) Reset() {
	*m = Machine{step: StepOverview}
}

// syncStep derives the step from the selections. Confirmation is sticky.
func (m *Machine) syncStep() {
	if m.step == StepConfirmation {
		return
	}
	switch {
	case m.subprocessID != "":
		m.step = StepTask
	case m.processID != "":
		m.step = StepSubprocess
	default:
		m.step = StepOverview
	}
}

// Breadcrumb returns Dashboard followed by the names of the selected process
// and subprocess that exist in doc.
func (m *Machine) Breadcrumb(doc domain.Document) []string {
	crumbs := []string{"Dashboard"}
	p, ok := doc.FindProcess(m.processID)
	if !ok {
		return crumbs
	}
	crumbs = append(crumbs, p.Name)
	for i := range p.Subprocesses {
		if p.Subprocesses[i].ID == m.subprocessID {
			crumbs = append(crumbs, p.Subprocesses[i].Name)
			break
		}
	}
	return crumbs
}
