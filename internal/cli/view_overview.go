package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/procreview/internal/cli/formatter"
	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/review"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// filterCycle is the order the f key steps through.
var filterCycle = []domain.StatusFilter{
	domain.FilterAll,
	domain.FilterFor(domain.StatusPending),
	domain.FilterFor(domain.StatusApproved),
	domain.FilterFor(domain.StatusNeedsFix),
}

// overviewView is the dashboard: statistics, search, status filter and the
// process list.
type overviewView struct {
	state     *SharedState
	cursor    int
	rows      []domain.Process
	stats     review.Stats
	search    textinput.Model
	searching bool
	spinner   spinner.Model
}

func newOverviewView(state *SharedState) *overviewView {
	ti := textinput.New()
	ti.Placeholder = "Search processes, subprocesses, tasks..."
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.SetValue(state.Search)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	v := &overviewView{state: state, search: ti, spinner: sp}
	v.refresh()
	return v
}

func (v *overviewView) refresh() {
	if !v.state.Loaded {
		return
	}
	v.rows = review.Filter(v.state.Doc.Processes, v.state.Search, v.state.Filter)
	v.stats = review.ComputeStats(v.state.Doc.Processes)
	if v.cursor >= len(v.rows) {
		v.cursor = max(len(v.rows)-1, 0)
	}
}

func (v *overviewView) ID() ViewID    { return ViewOverview }
func (v *overviewView) Title() string { return "" }

// CapturesInput is true while the search box has focus.
func (v *overviewView) CapturesInput() bool { return v.searching }

func (v *overviewView) ShortHelp() []key.Binding {
	if v.searching {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "review")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		key.NewBinding(key.WithKeys("a", "x", "p"), key.WithHelp("a/x/p", "approve/fix/pending")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "comment")),
	}
}

func (v *overviewView) Init() tea.Cmd {
	if !v.state.Loaded {
		return v.spinner.Tick
	}
	return nil
}

func (v *overviewView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshViewMsg:
		v.refresh()
		return v, nil

	case spinner.TickMsg:
		if v.state.Loaded {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if !v.state.Loaded {
			return v, nil
		}
		if v.searching {
			return v.updateSearch(msg)
		}
		return v.handleKey(msg)
	}

	if v.searching {
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *overviewView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		v.searching = false
		v.search.Blur()
		return v, nil
	case tea.KeyEsc:
		v.searching = false
		v.search.Blur()
		v.search.SetValue("")
		v.state.Search = ""
		v.refresh()
		return v, nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.state.Search = v.search.Value()
	v.refresh()
	return v, cmd
}

func (v *overviewView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.rows)-1 {
			v.cursor++
		}
	case "/":
		v.searching = true
		return v, v.search.Focus()
	case "f":
		v.state.Filter = nextFilter(v.state.Filter)
		v.refresh()
	case "enter":
		if p, ok := v.current(); ok {
			v.state.Wizard.SelectProcess(p.ID)
			return v, stepChanged()
		}
	case "a", "x", "p":
		if p, ok := v.current(); ok {
			return v, setStatusCmd(v.state, domain.LevelProcess, p.ID, statusForKey(msg.String()))
		}
	case "n":
		if p, ok := v.current(); ok {
			return v, startComment(v.state, domain.LevelProcess, p.ID, p.Name)
		}
	}
	return v, nil
}

func (v *overviewView) current() (domain.Process, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return domain.Process{}, false
	}
	return v.rows[v.cursor], true
}

func (v *overviewView) View() string {
	if !v.state.Loaded {
		return "\n  " + v.spinner.View() + " " + formatter.Dim("Loading processes...")
	}

	var b strings.Builder
	st := v.stats
	fmt.Fprintf(&b, "\n  %s  %s  %s  %s  %s\n",
		formatter.Bold(fmt.Sprintf("%d processes · %d tasks", st.TotalProcesses, st.TotalTasks)),
		formatter.StatusColor(domain.StatusApproved).Render(fmt.Sprintf("✔ %d", st.Approved)),
		formatter.StatusColor(domain.StatusPending).Render(fmt.Sprintf("○ %d", st.Pending)),
		formatter.StatusColor(domain.StatusNeedsFix).Render(fmt.Sprintf("✖ %d", st.NeedsFix)),
		formatter.RenderProgress(float64(st.CompletionPct)/100, 16),
	)

	filter := "All"
	if !v.state.Filter.IsAll() {
		filter = string(v.state.Filter)
	}
	if v.searching || v.state.Search != "" {
		fmt.Fprintf(&b, "  %s\n", v.search.View())
	}
	fmt.Fprintf(&b, "  %s %s\n\n", formatter.Dim("Filter:"), formatter.StyleBlue.Render(filter))

	if len(v.rows) == 0 {
		b.WriteString("  " + formatter.Dim("No processes match your search.") + "\n")
		return b.String()
	}

	perProcess := map[string]review.ProcessProgress{}
	for _, pp := range st.PerProcess {
		perProcess[pp.ProcessID] = pp
	}
	nameWidth := max(v.state.Width-50, 20)
	for i, p := range v.rows {
		cursor := "  "
		name := formatter.Truncate(p.Name, nameWidth)
		if i == v.cursor {
			cursor = formatter.StyleHeader.Render("› ")
			name = formatter.Bold(name)
		}
		pp := perProcess[p.ID]
		fmt.Fprintf(&b, "  %s%s  %s  %s\n", cursor, name, formatter.StatusPill(p.Status), formatter.RenderRatio(pp.Approved, pp.Total, 10))
	}

	if p, ok := v.current(); ok && p.Description != "" {
		b.WriteString("\n  " + formatter.Dim(formatter.Truncate(p.Description, max(v.state.Width-4, 20))) + "\n")
	}
	return b.String()
}

func nextFilter(f domain.StatusFilter) domain.StatusFilter {
	for i, c := range filterCycle {
		if c == f || (f.IsAll() && c.IsAll()) {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return domain.FilterAll
}

// statusForKey maps the a/x/p shortcuts to statuses.
func statusForKey(k string) domain.Status {
	switch k {
	case "a":
		return domain.StatusApproved
	case "x":
		return domain.StatusNeedsFix
	default:
		return domain.StatusPending
	}
}
