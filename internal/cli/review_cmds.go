package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/procreview/internal/cli/formatter"
	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/export"
	"github.com/alexanderramin/procreview/internal/review"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var search, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processes matching a search and status filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := domain.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			svc, _, err := app.loadedService(cmd)
			if err != nil {
				return err
			}
			procs, err := svc.Filter(search, filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProcessList(procs, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "case-insensitive match on names and process description")
	cmd.Flags().StringVar(&status, "status", "all", "all, pending, approved or needs_fix")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a process, subprocess or task with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, doc, err := app.loadedService(cmd)
			if err != nil {
				return err
			}
			id := args[0]
			now := app.now()
			out := cmd.OutOrStdout()
			if p, ok := doc.FindProcess(id); ok {
				fmt.Fprint(out, formatter.FormatProcessDetail(*p, now))
				return nil
			}
			if s, p, ok := doc.FindSubprocess(id); ok {
				fmt.Fprint(out, formatter.FormatSubprocessDetail(*s, *p, now))
				return nil
			}
			if t, s, p, ok := doc.FindTask(id); ok {
				fmt.Fprint(out, formatter.FormatTaskDetail(*t, *s, *p, now))
				return nil
			}
			return fmt.Errorf("%q: %w", id, review.ErrNodeNotFound)
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Change review status",
	}

	var level string
	set := &cobra.Command{
		Use:   "set <id> <status>",
		Short: "Set the status of a process, subprocess or task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := domain.ParseLevel(level)
			if err != nil {
				return err
			}
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}
			svc, doc, err := app.loadedService(cmd)
			if err != nil {
				return err
			}
			lvl = resolvedLevel(doc, lvl, args[0])
			if _, err := svc.SetStatus(cmd.Context(), lvl, args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s\n",
				formatter.StyleGreen.Render(statusNotice(lvl)), formatter.Dim(args[0]), formatter.StatusPill(status))
			return nil
		},
	}
	set.Flags().StringVar(&level, "level", "", "process, subprocess or task (default: detect from id)")

	cmd.AddCommand(set)
	return cmd
}

func newCommentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage review comments",
	}

	var level string
	add := &cobra.Command{
		Use:   "add <id> <text>...",
		Short: "Add a comment to a process, subprocess or task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := domain.ParseLevel(level)
			if err != nil {
				return err
			}
			svc, _, err := app.loadedService(cmd)
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			if _, err := svc.AddComment(cmd.Context(), lvl, args[0], text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", formatter.StyleGreen.Render("Comment added"), formatter.Dim(args[0]))
			return nil
		},
	}
	add.Flags().StringVar(&level, "level", "", "process, subprocess or task (default: detect from id)")

	cmd.AddCommand(add)
	return cmd
}

func newBulkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <status> <taskID>...",
		Short: "Apply one status to several tasks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(args[0])
			if err != nil {
				return err
			}
			svc, _, err := app.loadedService(cmd)
			if err != nil {
				return err
			}
			ids := args[1:]
			res, err := svc.BulkSetTaskStatus(cmd.Context(), ids, status)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.StyleGreen.Render(bulkNotice(status, res.Updated)))
			if skipped := len(ids) - res.Updated; skipped > 0 {
				fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("%s not found", formatter.Plural(skipped, "id"))))
			}
			return nil
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show review progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := app.loadedService(cmd)
			if err != nil {
				return err
			}
			st, err := svc.Stats()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStats(st))
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "export csv|report",
		Short:     "Export the review as CSV or a paginated text report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(export.FormatCSV), string(export.FormatReport)},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(args[0])
			if err != nil {
				return err
			}
			svc, _, err := app.loadedService(cmd)
			if err != nil {
				return err
			}
			now := app.now()
			body, err := svc.Export(cmd.Context(), format, now)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), body)
				return nil
			}
			path := output
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, export.FileName(format, now))
			}
			if err := os.WriteFile(path, []byte(body+"\n"), 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", formatter.StyleGreen.Render(exportNotice(format)), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file or directory to write (default: stdout)")
	cmd.Flags().Int("page-lines", 0, "report page length in lines")
	return cmd
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase stored review data and reload the baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !app.interactive() {
					return errors.New("reset needs --yes when not running in a terminal")
				}
				confirmed := false
				if err := resetConfirmForm(&confirmed).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
					return nil
				}
			}
			svc, err := app.service()
			if err != nil {
				return err
			}
			doc, err := svc.Reset(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n",
				formatter.StyleGreen.Render("Review data reset."), formatter.Dim(formatter.Plural(len(doc.Processes), "process")+" reloaded"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// resolvedLevel fills in an auto-detected level for messages.
func resolvedLevel(doc domain.Document, lvl domain.Level, id string) domain.Level {
	if lvl != "" {
		return lvl
	}
	if found, ok := doc.LevelOf(id); ok {
		return found
	}
	return lvl
}

func statusNotice(lvl domain.Level) string {
	switch lvl {
	case domain.LevelProcess:
		return "Process status updated"
	case domain.LevelSubprocess:
		return "Subprocess status updated"
	case domain.LevelTask:
		return "Task status updated"
	}
	return "Status updated"
}

func bulkNotice(status domain.Status, n int) string {
	switch status {
	case domain.StatusApproved:
		return fmt.Sprintf("%d tasks approved", n)
	case domain.StatusNeedsFix:
		return fmt.Sprintf("%d tasks marked as needs fix", n)
	default:
		return fmt.Sprintf("%d tasks marked as pending", n)
	}
}

func exportNotice(f export.Format) string {
	if f == export.FormatCSV {
		return "Exported to CSV"
	}
	return "Exported report"
}
