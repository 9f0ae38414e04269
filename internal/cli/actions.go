package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/export"
	"github.com/alexanderramin/procreview/internal/wizard"
	tea "github.com/charmbracelet/bubbletea"
)

// Service calls run inside tea.Cmds so persistence never blocks input.

func loadDocument(app *App) tea.Cmd {
	return func() tea.Msg {
		svc, err := app.service()
		if err != nil {
			return docLoadedMsg{err: err}
		}
		doc, err := svc.Load(context.Background())
		return docLoadedMsg{doc: doc, err: err}
	}
}

func setStatusCmd(state *SharedState, level domain.Level, id string, status domain.Status) tea.Cmd {
	svc := state.App.Review
	return func() tea.Msg {
		doc, err := svc.SetStatus(context.Background(), level, id, status)
		return docUpdatedMsg{doc: doc, notice: statusNotice(level), err: err}
	}
}

func bulkStatusCmd(state *SharedState, ids []string, status domain.Status) tea.Cmd {
	svc := state.App.Review
	return func() tea.Msg {
		res, err := svc.BulkSetTaskStatus(context.Background(), ids, status)
		return docUpdatedMsg{doc: res.Doc, notice: bulkNotice(status, res.Updated), err: err}
	}
}

func addCommentCmd(state *SharedState, level domain.Level, id, text string) tea.Cmd {
	svc := state.App.Review
	return func() tea.Msg {
		doc, err := svc.AddComment(context.Background(), level, id, text)
		return docUpdatedMsg{doc: doc, notice: "Comment added", err: err}
	}
}

// exportPreviewCmd renders the text report into the output pane.
func exportPreviewCmd(state *SharedState) tea.Cmd {
	svc := state.App.Review
	now := state.Now()
	return func() tea.Msg {
		out, err := svc.Export(context.Background(), export.FormatReport, now)
		if err != nil {
			return noticeMsg{text: "Export failed: " + err.Error(), level: noticeError}
		}
		return cmdOutputMsg{output: out}
	}
}

// navigateTo asks the wizard to move and either switches views or opens
// the skip-warning dialog.
func navigateTo(state *SharedState, target wizard.Step) tea.Cmd {
	outcome, warning := state.Wizard.Navigate(target)
	switch outcome {
	case wizard.Moved:
		return stepChanged()
	case wizard.NeedsConfirmation:
		confirmed := false
		form := skipConfirmForm(warning, &confirmed)
		return pushView(newFormView(state, "Skip Steps", form,
			func() tea.Cmd { return applySkipDecision(state, confirmed) },
			func() tea.Cmd { return applySkipDecision(state, false) },
		))
	}
	return nil
}

// applySkipDecision resolves a pending wizard transition.
func applySkipDecision(state *SharedState, confirmed bool) tea.Cmd {
	if !confirmed {
		_ = state.Wizard.DeclineSkip()
		return nil
	}
	if _, err := state.Wizard.ConfirmSkip(); err != nil {
		return nil
	}
	return tea.Batch(stepChanged(), notify(wizard.SkipNotice, noticeWarn))
}

// startComment opens the comment form for a node.
func startComment(state *SharedState, level domain.Level, id, name string) tea.Cmd {
	text := ""
	form := commentForm(name, &text)
	return pushView(newFormView(state, "Comment", form,
		func() tea.Cmd { return applyComment(state, level, id, text) },
		nil,
	))
}

func applyComment(state *SharedState, level domain.Level, id, text string) tea.Cmd {
	if validateComment(text) != nil {
		return notify("Comment cannot be empty", noticeWarn)
	}
	return addCommentCmd(state, level, id, text)
}

// startReset opens the reset confirmation.
func startReset(state *SharedState) tea.Cmd {
	confirmed := false
	form := resetConfirmForm(&confirmed)
	return pushView(newFormView(state, "Reset", form,
		func() tea.Cmd { return applyReset(state, confirmed) },
		nil,
	))
}

// applyReset clears stored review data and reloads the baseline. The wizard
// returns to the overview with nothing selected.
func applyReset(state *SharedState, confirmed bool) tea.Cmd {
	if !confirmed {
		return nil
	}
	state.Wizard.Reset()
	svc := state.App.Review
	return func() tea.Msg {
		doc, err := svc.Reset(context.Background())
		return docLoadedMsg{doc: doc, notice: "Review data reset", err: err}
	}
}

func finalizeNotice(p *domain.Process) string {
	return fmt.Sprintf("Review finalized for %s", p.Name)
}
