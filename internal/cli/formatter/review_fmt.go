package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/review"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a progress bar like [████░░░░] 45%.
// The bar is colored based on percentage: green >66%, yellow 33-66%, red <33%.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	width = max(width, 2)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// RenderRatio renders done/total as a bar followed by the raw counts.
func RenderRatio(done, total, width int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	return RenderProgress(pct, width) + Dim(fmt.Sprintf("  %d/%d", done, total))
}

// FormatProcessList renders one table row per process.
func FormatProcessList(procs []domain.Process, now time.Time) string {
	if len(procs) == 0 {
		return Dim("No processes match.") + "\n"
	}
	rows := make([][]string, 0, len(procs))
	for _, p := range procs {
		approved, total := 0, 0
		for _, s := range p.Subprocesses {
			for _, t := range s.Tasks {
				total++
				if t.Status == domain.StatusApproved {
					approved++
				}
			}
		}
		rows = append(rows, []string{
			Dim(p.ID),
			p.Name,
			StatusPill(p.Status),
			fmt.Sprintf("%d/%d", approved, total),
			Updated(p.LastUpdatedBy, p.LastUpdatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "PROCESS", "STATUS", "TASKS", "UPDATED"}, rows)
}

// FormatStats renders dashboard statistics.
func FormatStats(st review.Stats) string {
	var b strings.Builder
	b.WriteString(Header("Review Progress"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Processes  %d\n", st.TotalProcesses)
	fmt.Fprintf(&b, "  Tasks      %d\n", st.TotalTasks)
	fmt.Fprintf(&b, "  %s  %d\n", StatusColor(domain.StatusApproved).Render("Approved "), st.Approved)
	fmt.Fprintf(&b, "  %s  %d\n", StatusColor(domain.StatusPending).Render("Pending  "), st.Pending)
	fmt.Fprintf(&b, "  %s  %d\n", StatusColor(domain.StatusNeedsFix).Render("Needs Fix"), st.NeedsFix)
	fmt.Fprintf(&b, "  Complete   %s\n", RenderProgress(float64(st.CompletionPct)/100, 20))

	if len(st.PerProcess) > 0 {
		b.WriteString("\n")
		rows := make([][]string, 0, len(st.PerProcess))
		for _, pp := range st.PerProcess {
			rows = append(rows, []string{pp.Name, RenderRatio(pp.Approved, pp.Total, 12)})
		}
		b.WriteString(RenderIndentedTable([]string{"PROCESS", "APPROVED"}, rows, 2))
	}
	return b.String()
}

// FormatComments renders comments newest first.
func FormatComments(comments []domain.Comment, now time.Time) string {
	if len(comments) == 0 {
		return "  " + Dim("No comments.") + "\n"
	}
	var b strings.Builder
	for _, c := range comments {
		fmt.Fprintf(&b, "  %s %s\n", StyleBlue.Render("•"), c.Text)
		fmt.Fprintf(&b, "    %s\n", Dim(c.User+" · "+HumanTimestamp(c.Timestamp, now)))
	}
	return b.String()
}

func nodeHeader(b *strings.Builder, level domain.Level, name, id, desc string, status domain.Status, by string, at *time.Time, now time.Time) {
	fmt.Fprintf(b, "%s %s %s\n", Dim(strings.ToUpper(string(level))), Bold(name), Dim("("+id+")"))
	if desc != "" {
		fmt.Fprintf(b, "%s\n", desc)
	}
	fmt.Fprintf(b, "\nStatus:   %s\n", StatusPill(status))
	fmt.Fprintf(b, "Updated:  %s\n", Updated(by, at, now))
}

// FormatProcessDetail renders a process with its subprocess/task tree and
// comments.
func FormatProcessDetail(p domain.Process, now time.Time) string {
	var b strings.Builder
	nodeHeader(&b, domain.LevelProcess, p.Name, p.ID, p.Description, p.Status, p.LastUpdatedBy, p.LastUpdatedAt, now)
	b.WriteString("\n")
	b.WriteString(RenderTree(ProcessTree(p)))
	b.WriteString("\n")
	b.WriteString(Header("Comments"))
	b.WriteString("\n")
	b.WriteString(FormatComments(p.Comments, now))
	return b.String()
}

// FormatSubprocessDetail renders a subprocess, its tasks and comments.
func FormatSubprocessDetail(s domain.Subprocess, parent domain.Process, now time.Time) string {
	var b strings.Builder
	nodeHeader(&b, domain.LevelSubprocess, s.Name, s.ID, s.Description, s.Status, s.LastUpdatedBy, s.LastUpdatedAt, now)
	fmt.Fprintf(&b, "Process:  %s\n\n", parent.Name)
	if len(s.Tasks) == 0 {
		b.WriteString(Dim("No tasks.") + "\n")
	} else {
		rows := make([][]string, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			rows = append(rows, []string{Dim(t.ID), t.Name, StatusPill(t.Status), fmt.Sprint(len(t.Comments))})
		}
		b.WriteString(RenderIndentedTable([]string{"ID", "TASK", "STATUS", "COMMENTS"}, rows, 2))
	}
	b.WriteString("\n")
	b.WriteString(Header("Comments"))
	b.WriteString("\n")
	b.WriteString(FormatComments(s.Comments, now))
	return b.String()
}

// FormatTaskDetail renders a task and its comments.
func FormatTaskDetail(t domain.Task, sub domain.Subprocess, proc domain.Process, now time.Time) string {
	var b strings.Builder
	nodeHeader(&b, domain.LevelTask, t.Name, t.ID, t.Description, t.Status, t.LastUpdatedBy, t.LastUpdatedAt, now)
	fmt.Fprintf(&b, "Path:     %s › %s\n\n", proc.Name, sub.Name)
	b.WriteString(Header("Comments"))
	b.WriteString("\n")
	b.WriteString(FormatComments(t.Comments, now))
	return b.String()
}

// FormatSummary renders the pre-finalization summary of a process.
func FormatSummary(sum review.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", Bold(sum.ProcessName), StatusPill(sum.ProcessStatus))

	rows := [][]string{
		countRow("Subprocesses", sum.Subprocesses, sum.SubprocessState),
		countRow("Tasks", sum.Tasks, sum.TaskState),
	}
	b.WriteString(RenderIndentedTable([]string{"", "APPROVED", "NEEDS FIX", "PENDING"}, rows, 2))
	b.WriteString("\n")

	if !sum.AllReviewed() {
		b.WriteString(StyleYellowBold.Render("Review Incomplete") + "\n")
		b.WriteString(StyleYellow.Render(fmt.Sprintf(
			"There are still %d subprocesses and %d tasks pending review. You can still finalize, but consider reviewing all items first.",
			sum.SubprocessState.Pending, sum.TaskState.Pending)) + "\n")
	} else if sum.HasNeedsFix() {
		b.WriteString(StyleRed.Render("Some items need fixes.") + "\n")
	} else {
		b.WriteString(StyleGreen.Render("Everything is approved.") + "\n")
	}
	return b.String()
}

func countRow(label string, total int, c review.StatusCounts) []string {
	return []string{
		label,
		StatusColor(domain.StatusApproved).Render(fmt.Sprintf("%d/%d", c.Approved, total)),
		StatusColor(domain.StatusNeedsFix).Render(fmt.Sprintf("%d/%d", c.NeedsFix, total)),
		StatusColor(domain.StatusPending).Render(fmt.Sprintf("%d/%d", c.Pending, total)),
	}
}
