package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/procreview/internal/cli/formatter"
	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// taskView lists the tasks of the selected subprocess, with multi-select
// for bulk status changes.
type taskView struct {
	state    *SharedState
	cursor   int
	selected map[string]bool
	expanded bool
}

func newTaskView(state *SharedState) *taskView {
	return &taskView{state: state, selected: map[string]bool{}}
}

func (v *taskView) ID() ViewID    { return ViewTask }
func (v *taskView) Title() string { return "" }
func (v *taskView) Init() tea.Cmd { return nil }

func (v *taskView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		key.NewBinding(key.WithKeys("a", "x", "p"), key.WithHelp("a/x/p", "approve/fix/pending")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "comment")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	}
}

func (v *taskView) tasks() []domain.Task {
	s, ok := v.state.SelectedSubprocess()
	if !ok {
		return nil
	}
	return s.Tasks
}

// selectedIDs returns the selection in display order.
func (v *taskView) selectedIDs() []string {
	var ids []string
	for _, t := range v.tasks() {
		if v.selected[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (v *taskView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshViewMsg:
		tasks := v.tasks()
		present := make(map[string]bool, len(tasks))
		for _, t := range tasks {
			present[t.ID] = true
		}
		for id := range v.selected {
			if !present[id] {
				delete(v.selected, id)
			}
		}
		if v.cursor >= len(tasks) {
			v.cursor = max(len(tasks)-1, 0)
		}

	case tea.KeyMsg:
		tasks := v.tasks()
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(tasks)-1 {
				v.cursor++
			}
		case " ":
			if v.cursor < len(tasks) {
				id := tasks[v.cursor].ID
				if v.selected[id] {
					delete(v.selected, id)
				} else {
					v.selected[id] = true
				}
			}
		case "c":
			v.selected = map[string]bool{}
		case "enter":
			v.expanded = !v.expanded
		case "a", "x", "p":
			status := statusForKey(msg.String())
			if ids := v.selectedIDs(); len(ids) > 0 {
				v.selected = map[string]bool{}
				return v, bulkStatusCmd(v.state, ids, status)
			}
			if v.cursor < len(tasks) {
				return v, setStatusCmd(v.state, domain.LevelTask, tasks[v.cursor].ID, status)
			}
		case "n":
			if v.cursor < len(tasks) {
				return v, startComment(v.state, domain.LevelTask, tasks[v.cursor].ID, tasks[v.cursor].Name)
			}
		}
	}
	return v, nil
}

func (v *taskView) View() string {
	s, ok := v.state.SelectedSubprocess()
	if !ok {
		return "\n  " + formatter.Dim("No subprocess selected. Press 2 to choose one.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s  %s\n", formatter.Bold(s.Name), formatter.StatusPill(s.Status))
	if s.Description != "" {
		fmt.Fprintf(&b, "  %s\n", formatter.Dim(s.Description))
	}

	if n := len(v.selected); n > 0 {
		fmt.Fprintf(&b, "  %s\n", formatter.StyleBlue.Render(fmt.Sprintf("%d selected · a approve · x needs fix · p pending · c clear", n)))
	}
	b.WriteString("\n")

	if len(s.Tasks) == 0 {
		b.WriteString("  " + formatter.Dim("No tasks.") + "\n")
		return b.String()
	}

	now := v.state.Now()
	for i, t := range s.Tasks {
		cursor := "  "
		name := t.Name
		if i == v.cursor {
			cursor = formatter.StyleHeader.Render("› ")
			name = formatter.Bold(name)
		}
		check := formatter.Dim("[ ]")
		if v.selected[t.ID] {
			check = formatter.StyleBlue.Render("[x]")
		}
		fmt.Fprintf(&b, "  %s%s %s  %s  %s\n", cursor, check, name, formatter.StatusPill(t.Status),
			formatter.Dim(formatter.Updated(t.LastUpdatedBy, t.LastUpdatedAt, now)))
	}

	if v.expanded && v.cursor < len(s.Tasks) {
		t := s.Tasks[v.cursor]
		b.WriteString("\n")
		if t.Description != "" {
			b.WriteString("  " + t.Description + "\n")
		}
		b.WriteString(formatter.FormatComments(t.Comments, now))
	}
	return b.String()
}
