package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewID identifies each type of view in the TUI.
type ViewID int

const (
	ViewOverview ViewID = iota
	ViewSubprocess
	ViewTask
	ViewConfirmation
	ViewForm
	ViewError
	ViewFallback
)

// View is the interface that all TUI views must implement.
// It extends tea.Model with navigation and help metadata.
type View interface {
	tea.Model
	ID() ViewID
	ShortHelp() []key.Binding // key hints shown in the bottom bar
	Title() string            // breadcrumb segment for overlay views
}

// inputCapturer is implemented by views that sometimes own a text input.
type inputCapturer interface {
	CapturesInput() bool
}
