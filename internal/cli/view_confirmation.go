package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/procreview/internal/cli/formatter"
	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/review"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const confirmationComments = 3

// confirmationView summarizes the selected process before the review is
// finalized.
type confirmationView struct {
	state *SharedState
}

func newConfirmationView(state *SharedState) *confirmationView {
	return &confirmationView{state: state}
}

func (v *confirmationView) ID() ViewID    { return ViewConfirmation }
func (v *confirmationView) Title() string { return "" }
func (v *confirmationView) Init() tea.Cmd { return nil }

func (v *confirmationView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "finalize")),
		key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back to review")),
		key.NewBinding(key.WithKeys("a", "x", "p"), key.WithHelp("a/x/p", "process status")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "comment")),
	}
}

func (v *confirmationView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	p, ok := v.state.SelectedProcess()
	switch keyMsg.String() {
	case "b":
		v.state.Wizard.Back()
		return v, stepChanged()
	case "enter":
		if ok {
			return v, notify(finalizeNotice(p), noticeInfo)
		}
	case "a", "x", "p":
		if ok {
			return v, setStatusCmd(v.state, domain.LevelProcess, p.ID, statusForKey(keyMsg.String()))
		}
	case "n":
		if ok {
			return v, startComment(v.state, domain.LevelProcess, p.ID, p.Name)
		}
	}
	return v, nil
}

func (v *confirmationView) View() string {
	p, ok := v.state.SelectedProcess()
	if !ok {
		return "\n  " + formatter.Dim("No process selected. Press 1 to choose one before finalizing.")
	}

	var b strings.Builder
	b.WriteString("\n")
	summary := strings.TrimRight(formatter.FormatSummary(review.Summarize(*p)), "\n")
	b.WriteString(indent(formatter.RenderBox("Review Summary", summary), "  "))
	b.WriteString("\n")

	if len(p.Comments) > 0 {
		b.WriteString("\n" + indent(formatter.Header("Process Comments"), "  ") + "\n")
		shown := p.Comments
		if len(shown) > confirmationComments {
			shown = shown[:confirmationComments]
		}
		b.WriteString(formatter.FormatComments(shown, v.state.Now()))
		if extra := len(p.Comments) - len(shown); extra > 0 {
			b.WriteString("  " + formatter.Dim(fmt.Sprintf("+%d more comments", extra)) + "\n")
		}
	}

	action := "Finalize Review"
	if !review.Summarize(*p).AllReviewed() {
		action = "Finalize Anyway"
	}
	b.WriteString("\n  " + formatter.StyleHeader.Render("enter: "+action) + "\n")
	return b.String()
}

// indent prefixes every non-empty line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
