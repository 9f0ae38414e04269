package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// DefaultPageLines is the report page length when none is configured.
const DefaultPageLines = 50

const (
	reportTitle = "Process Review Report"
	pageBreak   = "\f"
	colGap      = 2
)

// ReportOptions controls report layout.
type ReportOptions struct {
	GeneratedAt time.Time
	// PageLines is the body line budget per page, footer excluded.
	PageLines int
}

// Report renders a plain-text review report grouped by process then
// subprocess. Pages are separated by a form feed and end with a
// "Page i of n" footer.
func Report(processes []domain.Process, opts ReportOptions) string {
	pageLines := opts.PageLines
	if pageLines <= 0 {
		pageLines = DefaultPageLines
	}

	blocks := [][]string{{
		reportTitle,
		"Generated: " + opts.GeneratedAt.Format("2006-01-02 15:04"),
		"",
	}}
	if len(processes) == 0 {
		blocks = append(blocks, []string{"No processes to report."})
	}
	for i := range processes {
		blocks = append(blocks, processBlock(i+1, &processes[i]))
		for j := range processes[i].Subprocesses {
			blocks = append(blocks, subprocessBlock(&processes[i].Subprocesses[j]))
		}
	}

	pages := paginate(blocks, pageLines)
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString(pageBreak)
		}
		for _, line := range page {
			b.WriteString(strings.TrimRight(line, " "))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nPage %d of %d\n", i+1, len(pages))
	}
	return b.String()
}

func processBlock(n int, p *domain.Process) []string {
	lines := []string{fmt.Sprintf("Process %d: %s", n, p.Name)}
	if p.Description != "" {
		lines = append(lines, p.Description)
	}
	updated := formatTime(p.LastUpdatedAt)
	if p.LastUpdatedBy != "" {
		updated += " by " + p.LastUpdatedBy
	}
	lines = append(lines,
		"Status: "+string(p.Status),
		"Last Updated: "+updated,
		"Comments: "+strconv.Itoa(len(p.Comments)),
		"",
	)
	return lines
}

func subprocessBlock(s *domain.Subprocess) []string {
	lines := []string{"  " + s.Name + " (" + string(s.Status) + ")"}
	if len(s.Tasks) == 0 {
		return append(lines, "  No tasks.", "")
	}
	rows := make([][]string, 0, len(s.Tasks))
	for i := range s.Tasks {
		t := &s.Tasks[i]
		rows = append(rows, []string{
			t.Name,
			string(t.Status),
			orDash(t.LastUpdatedBy),
			strconv.Itoa(len(t.Comments)),
		})
	}
	for _, l := range textTable([]string{"Task", "Status", "Updated By", "Comments"}, rows) {
		lines = append(lines, "  "+l)
	}
	return append(lines, "")
}

// textTable lays out an unstyled column-aligned table with a rule under the
// header.
func textTable(headers []string, rows [][]string) []string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	renderRow := func(cells []string) string {
		var b strings.Builder
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(cell)
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+colGap))
			}
		}
		return b.String()
	}

	rules := make([]string, len(headers))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}
	out := []string{renderRow(headers), renderRow(rules)}
	for _, row := range rows {
		out = append(out, renderRow(row))
	}
	return out
}

// paginate packs blocks into pages of at most pageLines lines. A block that
// does not fit on a partly filled page starts a new one; a block longer than
// a whole page is split.
func paginate(blocks [][]string, pageLines int) [][]string {
	var pages [][]string
	var cur []string
	for _, block := range blocks {
		if len(cur) > 0 && len(cur)+len(block) > pageLines {
			pages = append(pages, cur)
			cur = nil
		}
		for _, line := range block {
			if len(cur) == pageLines {
				pages = append(pages, cur)
				cur = nil
			}
			cur = append(cur, line)
		}
	}
	if len(cur) > 0 || len(pages) == 0 {
		pages = append(pages, cur)
	}
	return pages
}
