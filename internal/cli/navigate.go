package cli

import (
	"github.com/alexanderramin/procreview/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// cmdOutputMsg carries text to show in the scrollable output pane.
type cmdOutputMsg struct {
	output string
}

// wizardCompleteMsg is sent when a form completes or is cancelled.
// The appModel handles it atomically: pop the form view, then run nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

// refreshViewMsg asks every view on the stack to re-read shared state.
type refreshViewMsg struct{}

// stepChangedMsg is sent after the wizard machine moves; the appModel swaps
// the base view for the one matching the new step.
type stepChangedMsg struct{}

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeWarn
	noticeError
)

// noticeMsg shows a transient notification above the status bar until the
// next key press.
type noticeMsg struct {
	text  string
	level noticeLevel
}

// docLoadedMsg carries the result of a load or reset.
type docLoadedMsg struct {
	doc    domain.Document
	notice string
	err    error
}

// docUpdatedMsg carries the result of a mutation.
type docUpdatedMsg struct {
	doc    domain.Document
	notice string
	err    error
}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

func stepChanged() tea.Cmd {
	return func() tea.Msg { return stepChangedMsg{} }
}

func notify(text string, level noticeLevel) tea.Cmd {
	return func() tea.Msg { return noticeMsg{text: text, level: level} }
}
