package cli

import (
	"github.com/alexanderramin/procreview/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// errorView replaces the wizard when the baseline cannot be fetched.
type errorView struct {
	state *SharedState
	err   error
}

func newErrorView(state *SharedState, err error) *errorView {
	return &errorView{state: state, err: err}
}

func (v *errorView) ID() ViewID    { return ViewError }
func (v *errorView) Title() string { return "Error" }
func (v *errorView) Init() tea.Cmd { return nil }

func (v *errorView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
	}
}

func (v *errorView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "r" {
		ov := newOverviewView(v.state)
		return ov, tea.Batch(ov.Init(), loadDocument(v.state.App))
	}
	return v, nil
}

func (v *errorView) View() string {
	out := "\n  " + formatter.StyleRed.Render("Error loading data. Press r to retry or q to quit.")
	if v.err != nil {
		out += "\n\n  " + formatter.Dim(v.err.Error())
	}
	return out + "\n"
}

// fallbackView is shown after a view panics. Enter resets the wizard and
// selections; review data is kept.
type fallbackView struct {
	state *SharedState
	err   error
}

func newFallbackView(state *SharedState, err error) *fallbackView {
	return &fallbackView{state: state, err: err}
}

func (v *fallbackView) ID() ViewID    { return ViewFallback }
func (v *fallbackView) Title() string { return "Error" }
func (v *fallbackView) Init() tea.Cmd { return nil }

func (v *fallbackView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "reset view")),
	}
}

func (v *fallbackView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEnter {
		v.state.Crashed = nil
		v.state.Wizard.Reset()
		return v, stepChanged()
	}
	return v, nil
}

func (v *fallbackView) View() string {
	out := "\n  " + formatter.StyleRed.Render("Something went wrong.") +
		"\n  " + formatter.Dim("Press enter to return to the overview. Your review data is kept.")
	if v.err != nil {
		out += "\n\n  " + formatter.Dim(v.err.Error())
	}
	return out + "\n"
}
