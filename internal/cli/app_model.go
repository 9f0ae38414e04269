package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/procreview/internal/cli/formatter"
	"github.com/alexanderramin/procreview/internal/wizard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// appModel is the root bubbletea Model for the TUI.
// The bottom of the view stack always shows the current wizard step;
// forms and the report preview sit above it.
type appModel struct {
	state     *SharedState
	viewStack []View
	quitting  bool

	notice      string
	noticeLevel noticeLevel

	// Scrollable viewport for the report preview.
	outputVP     viewport.Model
	outputActive bool
}

func newAppModel(app *App) appModel {
	state := newSharedState(app)

	vp := viewport.New(0, 0)
	vp.KeyMap = outputViewportKeyMap()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := appModel{
		state:    state,
		outputVP: vp,
	}
	m.viewStack = []View{newOverviewView(state)}
	return m
}

// viewForStep builds the base view for the wizard's current step.
func viewForStep(state *SharedState) View {
	switch state.Wizard.Step() {
	case wizard.StepSubprocess:
		return newSubprocessView(state)
	case wizard.StepTask:
		return newTaskView(state)
	case wizard.StepConfirmation:
		return newConfirmationView(state)
	default:
		return newOverviewView(state)
	}
}

// activeView returns the top view on the stack, or nil.
func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

// setActiveView replaces the top of the view stack.
func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

// resetStack drops every view and starts over with base.
func (m *appModel) resetStack(base View) tea.Cmd {
	m.clearOutput()
	m.viewStack = []View{base}
	return base.Init()
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if v := m.activeView(); v != nil {
		cmds = append(cmds, v.Init())
	}
	if !m.state.Loaded {
		cmds = append(cmds, loadDocument(m.state.App))
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state.Crashed != nil {
		if v := m.activeView(); v == nil || v.ID() != ViewFallback {
			cmd := m.resetStack(newFallbackView(m.state, m.state.Crashed))
			return m, cmd
		}
	}

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		if m.outputActive {
			m.outputVP.Width = msg.Width
			m.outputVP.Height = m.state.ContentHeight()
		}
		return m, m.forwardActive(msg)

	case tea.KeyMsg:
		m.notice = ""
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.outputActive {
			var cmd tea.Cmd
			m.outputVP, cmd = m.outputVP.Update(msg)
			return m, cmd
		}

	case pushViewMsg:
		m.clearOutput()
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()

	case stepChangedMsg:
		return m, m.resetStack(viewForStep(m.state))

	case refreshViewMsg:
		return m, m.broadcast(msg)

	case docLoadedMsg:
		if msg.err != nil {
			m.state.Loaded = false
			return m, m.resetStack(newErrorView(m.state, msg.err))
		}
		m.state.Doc = msg.doc
		m.state.Loaded = true
		if msg.notice != "" {
			m.notice, m.noticeLevel = msg.notice, noticeInfo
		}
		return m, m.resetStack(viewForStep(m.state))

	case docUpdatedMsg:
		// Mutation cmds run concurrently; a late result must not roll back
		// a newer document.
		if msg.doc.Version > 0 && msg.doc.Version >= m.state.Doc.Version {
			m.state.Doc = msg.doc
		}
		if msg.err != nil {
			m.notice, m.noticeLevel = "Error: "+msg.err.Error(), noticeError
		} else if msg.notice != "" {
			m.notice, m.noticeLevel = msg.notice, noticeInfo
		}
		return m, m.broadcast(refreshViewMsg{})

	case noticeMsg:
		m.notice, m.noticeLevel = msg.text, msg.level
		return m, nil

	case cmdOutputMsg:
		m.outputActive = true
		m.outputVP.SetContent(msg.output)
		m.outputVP.Width = m.state.Width
		m.outputVP.Height = m.state.ContentHeight()
		m.outputVP.GotoTop()
		return m, nil

	case wizardCompleteMsg:
		// Atomically pop the form view and execute the follow-up command.
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, msg.nextCmd
	}

	return m, m.forwardActive(msg)
}

// forwardActive sends msg to the top view, recovering from panics.
func (m *appModel) forwardActive(msg tea.Msg) tea.Cmd {
	v := m.activeView()
	if v == nil {
		return nil
	}
	updated, cmd := m.safeUpdate(v, msg)
	m.setActiveView(updated)
	return cmd
}

// broadcast sends msg to every view in the stack so underlying views
// re-read state changed by views above them.
func (m *appModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, v := range m.viewStack {
		updated, cmd := m.safeUpdate(v, msg)
		m.viewStack[i] = updated
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// safeUpdate runs v.Update and turns a panic into the fallback view.
func (m *appModel) safeUpdate(v View, msg tea.Msg) (updated View, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			m.state.Crashed = err
			updated, cmd = newFallbackView(m.state, err), nil
		}
	}()
	next, cmd := v.Update(msg)
	return next.(View), cmd
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// Scroll keys move the report preview; anything else dismisses it and
	// falls through.
	if m.outputActive {
		if isOutputScrollKey(msg) {
			var cmd tea.Cmd
			m.outputVP, cmd = m.outputVP.Update(msg)
			return m, cmd
		}
		m.clearOutput()
		if msg.Type == tea.KeyEsc {
			return m, nil
		}
	}

	// Views with a focused text input receive every key, including q and esc.
	if v := m.activeView(); v != nil && viewCapturesInput(v) {
		return m, m.forwardActive(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
			return m, nil
		}
		if m.state.Loaded && m.state.Wizard.Step() != wizard.StepOverview {
			m.state.Wizard.Back()
			return m, stepChanged()
		}
		return m, nil
	}

	if m.onStepView() {
		switch k := msg.String(); k {
		case "1", "2", "3", "4":
			return m, navigateTo(m.state, wizard.Steps[k[0]-'1'])
		case "R":
			return m, startReset(m.state)
		case "e":
			return m, exportPreviewCmd(m.state)
		}
	}

	return m, m.forwardActive(msg)
}

// onStepView reports whether the only view is a wizard step, which is when
// the global step and report shortcuts apply.
func (m *appModel) onStepView() bool {
	if !m.state.Loaded || m.state.Crashed != nil || len(m.viewStack) != 1 {
		return false
	}
	switch m.viewStack[0].ID() {
	case ViewOverview, ViewSubprocess, ViewTask, ViewConfirmation:
		return true
	}
	return false
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if m.outputActive && m.state.Height > 0 {
		sections = append(sections, m.outputVP.View())
	} else if v := m.activeView(); v != nil {
		sections = append(sections, m.safeView(v))
	}

	sections = append(sections, m.renderNotice())
	sections = append(sections, m.renderStatusBar())

	result := strings.Join(sections, "\n")

	// Pad to terminal height to prevent stale line artifacts from
	// bubbletea's line-diff renderer in alt-screen mode.
	if m.state.Height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.state.Height {
			result += strings.Repeat("\n", m.state.Height-lines)
		}
	}

	return result
}

// safeView renders v; a panic is recorded so the next update swaps in the
// fallback view.
func (m appModel) safeView(v View) (out string) {
	defer func() {
		if r := recover(); r != nil {
			m.state.Crashed = fmt.Errorf("%v", r)
			out = "\n  " + formatter.StyleRed.Render("Something went wrong. Press enter to reset the review.")
		}
	}()
	return v.View()
}

// ── rendering helpers ────────────────────────────────────────────────────────

func (m *appModel) renderHeader() string {
	title := formatter.StylePurple.Render("procreview")

	crumbs := m.state.Wizard.Breadcrumb(m.state.Doc)
	for _, v := range m.viewStack[1:] {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	header := title + " " + formatter.Dim("›") + " " + formatter.Dim(strings.Join(crumbs, " › "))

	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return header + "\n" + renderStepper(m.state.Wizard.Step()) + "\n" + sep
}

// renderStepper shows the four wizard steps with the current one
// highlighted.
func renderStepper(current wizard.Step) string {
	parts := make([]string, 0, len(wizard.Steps))
	for i, s := range wizard.Steps {
		label := fmt.Sprintf("%d %s", i+1, s.Label())
		switch {
		case s == current:
			parts = append(parts, formatter.StyleHeader.Render("● "+label))
		case s < current:
			parts = append(parts, formatter.StyleGreen.Render("✔ "+label))
		default:
			parts = append(parts, formatter.Dim("○ "+label))
		}
	}
	return strings.Join(parts, formatter.Dim("  ─  "))
}

func (m *appModel) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	switch m.noticeLevel {
	case noticeWarn:
		return formatter.StyleYellow.Render("! " + m.notice)
	case noticeError:
		return formatter.StyleRed.Render("✖ " + m.notice)
	default:
		return formatter.StyleGreen.Render("✔ " + m.notice)
	}
}

func (m *appModel) renderStatusBar() string {
	var hints []string

	if m.outputActive && m.outputVP.TotalLineCount() > m.outputVP.Height {
		hints = append(hints, scrollIndicator(m.outputVP))
		hints = append(hints, formatter.Dim("↑↓ pgup/pgdn: scroll"))
		hints = append(hints, formatter.Dim("esc: dismiss"))
	} else if m.outputActive {
		hints = append(hints, formatter.Dim("esc: dismiss"))
	} else if v := m.activeView(); v != nil {
		for _, b := range v.ShortHelp() {
			hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
		}
		if m.onStepView() {
			hints = append(hints, formatter.Dim("1-4: step"), formatter.Dim("e: report"), formatter.Dim("R: reset"))
			if m.state.Wizard.Step() != wizard.StepOverview {
				hints = append(hints, formatter.Dim("esc: back"))
			}
		}
		if !viewCapturesInput(v) {
			hints = append(hints, formatter.Dim("q: quit"))
		}
	}

	bar := strings.Join(hints, "  ")
	sepStyle := lipgloss.NewStyle().Foreground(formatter.ColorDim)
	sep := sepStyle.Render(strings.Repeat("─", max(m.state.Width, 20)))
	return sep + "\n" + bar
}

// clearOutput dismisses the report preview.
func (m *appModel) clearOutput() {
	m.outputActive = false
}

// outputViewportKeyMap returns a restricted keymap for the output viewport.
// Only arrow/page keys scroll; letter keys stay free for global shortcuts.
func outputViewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up")),
		Down:         key.NewBinding(key.WithKeys("down")),
	}
}

// isOutputScrollKey returns true if the key should scroll the output viewport
// rather than dismissing the output.
func isOutputScrollKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown,
		tea.KeyHome, tea.KeyEnd, tea.KeyCtrlU, tea.KeyCtrlD:
		return true
	}
	return false
}

// scrollIndicator returns a dim scroll position string for the status bar.
func scrollIndicator(vp viewport.Model) string {
	if vp.AtTop() {
		return formatter.Dim("[TOP]")
	}
	if vp.AtBottom() {
		return formatter.Dim("[END]")
	}
	pct := int(vp.ScrollPercent() * 100)
	return formatter.Dim(fmt.Sprintf("[%d%%]", pct))
}

// viewCapturesInput returns true if the active view has its own text input
// and should receive all key events, bypassing global keybindings.
func viewCapturesInput(v View) bool {
	if v == nil {
		return false
	}
	if v.ID() == ViewForm {
		return true
	}
	if c, ok := v.(inputCapturer); ok {
		return c.CapturesInput()
	}
	return false
}
