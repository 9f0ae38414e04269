package cli

import (
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/wizard"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App    *App
	Wizard *wizard.Machine

	// Doc is the last document received from the review service.
	Doc    domain.Document
	Loaded bool

	// Overview filters
	Search string
	Filter domain.StatusFilter

	// Terminal dimensions
	Width  int
	Height int

	// Crashed is set when a view panics during rendering; the next update
	// replaces the stack with the fallback view.
	Crashed error
}

func newSharedState(app *App) *SharedState {
	return &SharedState{App: app, Wizard: wizard.New(), Filter: domain.FilterAll}
}

// SelectedProcess returns the process chosen in the wizard, if it exists.
func (s *SharedState) SelectedProcess() (*domain.Process, bool) {
	return s.Doc.FindProcess(s.Wizard.ProcessID())
}

// SelectedSubprocess returns the chosen subprocess when it belongs to the
// chosen process.
func (s *SharedState) SelectedSubprocess() (*domain.Subprocess, bool) {
	p, ok := s.SelectedProcess()
	if !ok {
		return nil, false
	}
	for i := range p.Subprocesses {
		if p.Subprocesses[i].ID == s.Wizard.SubprocessID() {
			return &p.Subprocesses[i], true
		}
	}
	return nil, false
}

// Now returns the app clock reading.
func (s *SharedState) Now() time.Time {
	return s.App.now()
}

// ContentHeight returns the available height for view content,
// accounting for header (3 lines: title, stepper, separator),
// notice line, and status bar (2 lines: separator + hints).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 6
	if h < 1 {
		return 1
	}
	return h
}
