package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/fixture"
	"github.com/alexanderramin/procreview/internal/teatest"
	"github.com/alexanderramin/procreview/internal/testutil"
	"github.com/alexanderramin/procreview/internal/wizard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTaskStep walks overview → Mixing → Blending.
func openTaskStep(d *TestDriver) {
	d.PressEnter()
	d.PressEnter()
}

func TestTUI_LoadShowsProcesses(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))

	require.True(t, d.State().Loaded)
	assert.Equal(t, ViewOverview, d.ActiveViewID())
	assert.Equal(t, wizard.StepOverview, d.Step())

	out := d.PlainView()
	assert.Contains(t, out, "Mixing")
	assert.Contains(t, out, "Packaging")
	assert.Contains(t, out, "2 processes · 4 tasks")
	assert.Contains(t, out, "Dashboard")
}

func TestTUI_EnterWalksIntoSubprocessesAndTasks(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))

	d.PressEnter()
	assert.Equal(t, ViewSubprocess, d.ActiveViewID())
	assert.Equal(t, wizard.StepSubprocess, d.Step())
	assert.Equal(t, "p-mix", d.State().Wizard.ProcessID())
	assert.Contains(t, d.PlainView(), "Blending")
	assert.Contains(t, d.PlainView(), "Drying")

	d.PressDown()
	d.PressEnter()
	assert.Equal(t, ViewTask, d.ActiveViewID())
	assert.Equal(t, "s-dry", d.State().Wizard.SubprocessID())
	assert.Contains(t, d.PlainView(), "Check moisture")
	assert.Contains(t, d.PlainView(), "Dashboard › Mixing › Drying")
}

func TestTUI_EscStepsBack(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))
	openTaskStep(d)
	require.Equal(t, wizard.StepTask, d.Step())

	d.PressEsc()
	assert.Equal(t, wizard.StepSubprocess, d.Step())
	assert.Equal(t, ViewSubprocess, d.ActiveViewID())
	assert.Empty(t, d.State().Wizard.SubprocessID())

	d.PressEsc()
	assert.Equal(t, wizard.StepOverview, d.Step())
	assert.Empty(t, d.State().Wizard.ProcessID())
}

func TestTUI_TaskBulkApprove(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))
	openTaskStep(d)

	d.PressSpace()
	d.PressDown()
	d.PressSpace()
	assert.Contains(t, d.PlainView(), "2 selected")

	d.PressKey('a')
	assert.Equal(t, "2 tasks approved", d.Notice())
	assert.Equal(t, domain.StatusApproved, d.Task("t-load").Status)
	assert.Equal(t, domain.StatusApproved, d.Task("t-blend").Status)
	assert.Equal(t, "qa-lead", d.Task("t-load").LastUpdatedBy)
	assert.NotContains(t, d.PlainView(), "selected ·")
}

func TestTUI_TaskSingleStatusWithoutSelection(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))
	openTaskStep(d)

	d.PressKey('x')
	assert.Equal(t, "Task status updated", d.Notice())
	assert.Equal(t, domain.StatusNeedsFix, d.Task("t-load").Status)
	assert.Equal(t, domain.StatusPending, d.Task("t-blend").Status)

	// Notices clear on the next key.
	d.PressDown()
	assert.Empty(t, d.Notice())
}

func TestTUI_ProcessStatusFromOverview(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))

	d.PressDown()
	d.PressKey('a')
	assert.Equal(t, "Process status updated", d.Notice())
	p, ok := d.State().Doc.FindProcess("p-pack")
	require.True(t, ok)
	assert.Equal(t, domain.StatusApproved, p.Status)
}

func TestTUI_SkipWarning(t *testing.T) {
	t.Run("esc declines", func(t *testing.T) {
		d := NewTestDriver(t, newTestApp(t))

		d.PressKey('3')
		assert.Equal(t, ViewForm, d.ActiveViewID())
		assert.Equal(t, 2, d.ViewStackLen())
		_, pending := d.State().Wizard.Pending()
		assert.True(t, pending)

		d.PressEsc()
		assert.Equal(t, ViewOverview, d.ActiveViewID())
		assert.Equal(t, wizard.StepOverview, d.Step())
		_, pending = d.State().Wizard.Pending()
		assert.False(t, pending)
	})

	t.Run("confirm moves with warning", func(t *testing.T) {
		d := NewTestDriver(t, newTestApp(t))

		d.PressKey('3')
		require.Equal(t, ViewForm, d.ActiveViewID())

		d.Send(wizardCompleteMsg{nextCmd: applySkipDecision(d.State(), true)})
		assert.Equal(t, wizard.StepTask, d.Step())
		assert.Equal(t, ViewTask, d.ActiveViewID())
		assert.Equal(t, 1, d.ViewStackLen())
		assert.Equal(t, wizard.SkipNotice, d.Notice())
		assert.Equal(t, noticeWarn, d.NoticeLevel())
		assert.Contains(t, d.PlainView(), "No subprocess selected")
	})

	t.Run("backward moves need no confirmation", func(t *testing.T) {
		d := NewTestDriver(t, newTestApp(t))
		openTaskStep(d)

		d.PressKey('1')
		assert.Equal(t, ViewOverview, d.ActiveViewID())
		assert.Equal(t, 1, d.ViewStackLen())
	})
}

func TestTUI_ConfirmationFinalize(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))
	openTaskStep(d)

	d.PressKey('4')
	assert.Equal(t, ViewConfirmation, d.ActiveViewID())
	out := d.PlainView()
	assert.Contains(t, out, "Review Incomplete")
	assert.Contains(t, out, "Finalize Anyway")

	d.PressEnter()
	assert.Equal(t, "Review finalized for Mixing", d.Notice())

	d.PressKey('b')
	assert.Equal(t, wizard.StepTask, d.Step())
	assert.Equal(t, "s-blend", d.State().Wizard.SubprocessID())
}

func TestTUI_ConfirmationAllApproved(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))
	d.PressEnter()
	d.RunCmd(bulkStatusCmd(d.State(), []string{"t-load", "t-blend", "t-dry"}, domain.StatusApproved))
	d.RunCmd(setStatusCmd(d.State(), domain.LevelSubprocess, "s-blend", domain.StatusApproved))
	d.RunCmd(setStatusCmd(d.State(), domain.LevelSubprocess, "s-dry", domain.StatusApproved))

	d.PressKey('4')
	require.Equal(t, ViewConfirmation, d.ActiveViewID())
	assert.Contains(t, d.PlainView(), "Finalize Review")
	assert.NotContains(t, d.PlainView(), "Finalize Anyway")
}

func TestTUI_ConfirmationCapsProcessComments(t *testing.T) {
	tree := testutil.NewReviewTree()
	testutil.WithProcessComments(
		testutil.NewTestComment("c1", "first note", "ana"),
		testutil.NewTestComment("c2", "second note", "ana"),
		testutil.NewTestComment("c3", "third note", "ben"),
		testutil.NewTestComment("c4", "fourth note", "ben"),
	)(&tree[0])
	app := &App{
		Review: newTestReviewService(t, &fixture.EmbeddedSource{Processes: tree}),
		Clock:  func() time.Time { return testutil.FixedTime },
	}
	d := NewTestDriver(t, app)
	openTaskStep(d)

	d.PressKey('4')
	require.Equal(t, ViewConfirmation, d.ActiveViewID())
	out := d.PlainView()
	assert.Contains(t, out, "  PROCESS COMMENTS\n  ────────────────")
	assert.Contains(t, out, "third note")
	assert.NotContains(t, out, "fourth note")
	assert.Contains(t, out, "+1 more comments")
}

func TestTUI_LateDocUpdateIsIgnored(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))
	base := d.State().Doc

	older := domain.Document{Version: base.Version + 1, Processes: domain.CloneProcesses(base.Processes)}
	newer := domain.Document{Version: base.Version + 2, Processes: domain.CloneProcesses(base.Processes)}
	newer.Processes[0].Name = "Mixing v2"

	d.Send(docUpdatedMsg{doc: newer, notice: "Task status updated"})
	d.Send(docUpdatedMsg{doc: older, notice: "Task status updated"})

	assert.Equal(t, newer.Version, d.State().Doc.Version)
	assert.Equal(t, "Mixing v2", d.State().Doc.Processes[0].Name)
	assert.Contains(t, d.PlainView(), "Mixing v2")
}

func TestTUI_SearchAndFilter(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))

	d.PressKey('/')
	d.Type("pack")
	d.PressEnter()
	assert.Equal(t, "pack", d.State().Search)
	out := d.PlainView()
	assert.Contains(t, out, "Packaging")
	assert.NotContains(t, out, "Mixing")

	// q typed while searching is text, not quit.
	d.PressKey('/')
	d.PressKey('q')
	assert.False(t, d.Quitting)
	assert.Contains(t, d.PlainView(), "No processes match your search.")
	d.PressEsc()
	assert.Empty(t, d.State().Search)
	assert.Contains(t, d.PlainView(), "Mixing")

	d.PressKey('f')
	d.PressKey('f')
	d.PressKey('f')
	assert.Equal(t, domain.FilterFor(domain.StatusNeedsFix), d.State().Filter)
	out = d.PlainView()
	assert.Contains(t, out, "Packaging")
	assert.NotContains(t, out, "Mixing")

	d.PressKey('f')
	assert.True(t, d.State().Filter.IsAll())
}

func TestTUI_CommentForm(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))

	d.PressKey('n')
	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Contains(t, d.PlainView(), "Comment on Mixing")

	d.PressEsc()
	assert.Equal(t, ViewOverview, d.ActiveViewID())
	assert.Empty(t, d.Notice())

	d.RunCmd(applyComment(d.State(), domain.LevelProcess, "p-mix", "Check torque settings"))
	assert.Equal(t, "Comment added", d.Notice())
	p, _ := d.State().Doc.FindProcess("p-mix")
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "Check torque settings", p.Comments[0].Text)
	assert.Equal(t, "qa-lead", p.Comments[0].User)
}

func TestTUI_ResetRestoresBaseline(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))
	openTaskStep(d)
	d.PressKey('a')
	require.Equal(t, domain.StatusApproved, d.Task("t-load").Status)

	d.PressKey('R')
	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Contains(t, d.PlainView(), "Reset all review data?")
	d.PressEsc()
	assert.Equal(t, domain.StatusApproved, d.Task("t-load").Status)

	d.RunCmd(applyReset(d.State(), true))
	assert.Equal(t, "Review data reset", d.Notice())
	assert.Equal(t, domain.StatusPending, d.Task("t-load").Status)
	assert.Equal(t, wizard.StepOverview, d.Step())
	assert.Equal(t, ViewOverview, d.ActiveViewID())
}

func TestTUI_ExportPreview(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))

	d.PressKey('e')
	require.True(t, d.OutputActive())
	assert.Contains(t, d.PlainView(), "Process Review Report")

	d.PressDown()
	assert.True(t, d.OutputActive())

	d.PressEsc()
	assert.False(t, d.OutputActive())
	assert.Equal(t, ViewOverview, d.ActiveViewID())
}

func TestTUI_LoadErrorAndRetry(t *testing.T) {
	src := &flakySource{fail: true}
	app := &App{Review: newTestReviewService(t, src)}
	d := NewTestDriver(t, app)

	assert.Equal(t, ViewError, d.ActiveViewID())
	assert.Contains(t, d.PlainView(), "Error loading data. Press r to retry or q to quit.")
	assert.Contains(t, d.PlainView(), "baseline unavailable")

	// Step shortcuts are inert without data.
	d.PressKey('3')
	assert.Equal(t, ViewError, d.ActiveViewID())

	src.fail = false
	d.PressKey('r')
	assert.True(t, d.State().Loaded)
	assert.Equal(t, ViewOverview, d.ActiveViewID())
	assert.Contains(t, d.PlainView(), "Mixing")
}

func TestTUI_FallbackAfterCrash(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t))
	openTaskStep(d)

	d.State().Crashed = errors.New("boom")
	d.Send(refreshViewMsg{})
	assert.Equal(t, ViewFallback, d.ActiveViewID())
	assert.Contains(t, d.PlainView(), "Something went wrong.")

	d.PressEnter()
	assert.Nil(t, d.State().Crashed)
	assert.Equal(t, ViewOverview, d.ActiveViewID())
	assert.Equal(t, wizard.StepOverview, d.Step())
	assert.Empty(t, d.State().Wizard.ProcessID())
}

func TestTUI_Quit(t *testing.T) {
	for _, press := range []func(*TestDriver){
		func(d *TestDriver) { d.PressKey('q') },
		func(d *TestDriver) { d.PressCtrlC() },
	} {
		d := NewTestDriver(t, newTestApp(t))
		press(d)
		assert.True(t, d.Quitting)
		assert.Empty(t, d.View())
	}
}

func TestTUI_WithoutSizeStillRenders(t *testing.T) {
	d := NewTestDriver(t, newTestApp(t), teatest.WithCmdTimeout(50*time.Millisecond))
	assert.Contains(t, d.PlainView(), "Mixing")
	assert.Contains(t, d.DeliveredTypes(), "cli.docLoadedMsg")
}

// ── direct action tests ──────────────────────────────────────────────────────

func TestApplyComment_EmptyWarns(t *testing.T) {
	state := newSharedState(newTestApp(t))
	msg := applyComment(state, domain.LevelTask, "t-load", "   ")()
	n, ok := msg.(noticeMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, noticeWarn, n.level)
}

func TestApplySkipDecision_NothingPending(t *testing.T) {
	state := newSharedState(newTestApp(t))
	assert.Nil(t, applySkipDecision(state, true))
	assert.Nil(t, applySkipDecision(state, false))
	assert.Equal(t, wizard.StepOverview, state.Wizard.Step())
}

func TestApplyReset_Declined(t *testing.T) {
	state := newSharedState(newTestApp(t))
	state.Wizard.SelectProcess("p-mix")
	assert.Nil(t, applyReset(state, false))
	assert.Equal(t, "p-mix", state.Wizard.ProcessID())
}

func TestNavigateTo(t *testing.T) {
	state := newSharedState(newTestApp(t))

	msg := navigateTo(state, wizard.StepSubprocess)()
	push, ok := msg.(pushViewMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, ViewForm, push.view.ID())
	assert.Equal(t, "Skip Steps", push.view.Title())

	state.Wizard.SelectProcess("p-mix")
	assert.Nil(t, navigateTo(state, wizard.StepSubprocess))

	msg = navigateTo(state, wizard.StepOverview)()
	assert.IsType(t, stepChangedMsg{}, msg)
}

func TestNextFilterCycles(t *testing.T) {
	f := domain.FilterAll
	seen := []domain.StatusFilter{f}
	for range 4 {
		f = nextFilter(f)
		seen = append(seen, f)
	}
	assert.Equal(t, []domain.StatusFilter{
		domain.FilterAll,
		domain.FilterFor(domain.StatusPending),
		domain.FilterFor(domain.StatusApproved),
		domain.FilterFor(domain.StatusNeedsFix),
		domain.FilterAll,
	}, seen)
}

func TestRenderStepper(t *testing.T) {
	out := renderStepper(wizard.StepTask)
	for _, s := range wizard.Steps {
		assert.Contains(t, out, s.Label())
	}
}

func TestViewCapturesInput(t *testing.T) {
	state := newSharedState(newTestApp(t))
	ov := newOverviewView(state)
	assert.False(t, viewCapturesInput(ov))
	ov.searching = true
	assert.True(t, viewCapturesInput(ov))
	assert.True(t, viewCapturesInput(newFormView(state, "x", resetConfirmForm(new(bool)), nil, nil)))
	assert.False(t, viewCapturesInput(nil))
}

func TestAppModel_WizardCompletePopsForm(t *testing.T) {
	m := newAppModel(newTestApp(t))
	m.viewStack = append(m.viewStack, newFormView(m.state, "Reset", resetConfirmForm(new(bool)), nil, nil))

	next := func() tea.Msg { return noticeMsg{text: "done"} }
	model, cmd := m.Update(wizardCompleteMsg{nextCmd: next})
	m = model.(appModel)
	require.Len(t, m.viewStack, 1)
	require.NotNil(t, cmd)
	assert.Equal(t, noticeMsg{text: "done"}, cmd())
}
