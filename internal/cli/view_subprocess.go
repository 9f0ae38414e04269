package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/procreview/internal/cli/formatter"
	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// subprocessView lists the subprocesses of the selected process.
type subprocessView struct {
	state  *SharedState
	cursor int
}

func newSubprocessView(state *SharedState) *subprocessView {
	v := &subprocessView{state: state}
	// Land on the previously selected subprocess when coming back.
	if p, ok := state.SelectedProcess(); ok {
		for i := range p.Subprocesses {
			if p.Subprocesses[i].ID == state.Wizard.SubprocessID() {
				v.cursor = i
			}
		}
	}
	return v
}

func (v *subprocessView) ID() ViewID    { return ViewSubprocess }
func (v *subprocessView) Title() string { return "" }
func (v *subprocessView) Init() tea.Cmd { return nil }

func (v *subprocessView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "review tasks")),
		key.NewBinding(key.WithKeys("a", "x", "p"), key.WithHelp("a/x/p", "approve/fix/pending")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "comment")),
	}
}

func (v *subprocessView) subprocesses() []domain.Subprocess {
	p, ok := v.state.SelectedProcess()
	if !ok {
		return nil
	}
	return p.Subprocesses
}

func (v *subprocessView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshViewMsg:
		if n := len(v.subprocesses()); v.cursor >= n {
			v.cursor = max(n-1, 0)
		}
	case tea.KeyMsg:
		subs := v.subprocesses()
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(subs)-1 {
				v.cursor++
			}
		case "enter":
			if v.cursor < len(subs) {
				v.state.Wizard.SelectSubprocess(subs[v.cursor].ID)
				return v, stepChanged()
			}
		case "a", "x", "p":
			if v.cursor < len(subs) {
				return v, setStatusCmd(v.state, domain.LevelSubprocess, subs[v.cursor].ID, statusForKey(msg.String()))
			}
		case "n":
			if v.cursor < len(subs) {
				return v, startComment(v.state, domain.LevelSubprocess, subs[v.cursor].ID, subs[v.cursor].Name)
			}
		}
	}
	return v, nil
}

func (v *subprocessView) View() string {
	p, ok := v.state.SelectedProcess()
	if !ok {
		return "\n  " + formatter.Dim("No process selected. Press 1 to choose one from the overview.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s  %s\n", formatter.Bold(p.Name), formatter.StatusPill(p.Status))
	if p.Description != "" {
		fmt.Fprintf(&b, "  %s\n", formatter.Dim(p.Description))
	}
	b.WriteString("\n")

	if len(p.Subprocesses) == 0 {
		b.WriteString("  " + formatter.Dim("This process has no subprocesses.") + "\n")
		return b.String()
	}

	for i, s := range p.Subprocesses {
		approved := 0
		for _, t := range s.Tasks {
			if t.Status == domain.StatusApproved {
				approved++
			}
		}
		cursor := "  "
		name := s.Name
		if i == v.cursor {
			cursor = formatter.StyleHeader.Render("› ")
			name = formatter.Bold(name)
		}
		comments := ""
		if n := len(s.Comments); n > 0 {
			comments = "  " + formatter.Dim(formatter.Plural(n, "comment"))
		}
		fmt.Fprintf(&b, "  %s%s  %s  %s%s\n", cursor, name, formatter.StatusPill(s.Status),
			formatter.RenderRatio(approved, len(s.Tasks), 10), comments)
	}

	if v.cursor < len(p.Subprocesses) {
		if d := p.Subprocesses[v.cursor].Description; d != "" {
			b.WriteString("\n  " + formatter.Dim(d) + "\n")
		}
	}
	return b.String()
}
