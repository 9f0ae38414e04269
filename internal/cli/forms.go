package cli

import (
	"errors"
	"strings"

	"github.com/alexanderramin/procreview/internal/cli/formatter"
	"github.com/alexanderramin/procreview/internal/wizard"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// procreviewHuhTheme returns a huh theme using the formatter palette.
func procreviewHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// skipConfirmForm asks whether to continue past a missing prerequisite.
func skipConfirmForm(w *wizard.Warning, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Skip required steps?").
				Description(w.Message+"\n"+wizard.SkipNotice+".").
				Affirmative("Continue anyway").
				Negative("Go back").
				Value(confirmed),
		),
	).WithTheme(procreviewHuhTheme()).WithShowHelp(false)
}

// commentForm collects the text of a new comment.
func commentForm(target string, text *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Comment on "+target).
				Placeholder("Add your comment...").
				CharLimit(2000).
				Value(text).
				Validate(validateComment),
		),
	).WithTheme(procreviewHuhTheme()).WithShowHelp(false)
}

// resetConfirmForm guards the destructive reset.
func resetConfirmForm(confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset all review data?").
				Description("Are you sure you want to reset all review data? This cannot be undone.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(confirmed),
		),
	).WithTheme(procreviewHuhTheme()).WithShowHelp(false)
}

func validateComment(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("comment cannot be empty")
	}
	return nil
}
