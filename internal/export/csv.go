// Package export renders the review tree as downloadable documents: a
// quote-escaped CSV with one row per task and a paginated plain-text report.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
)

// Format identifies an export kind.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatReport Format = "report"
)

// ParseFormat validates an export kind name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatReport, "txt", "pdf":
		return FormatReport, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or report)", s)
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	if f == FormatCSV {
		return "csv"
	}
	return "txt"
}

// FileName returns the default download name for the given day.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("process-review-%s.%s", now.Format("2006-01-02"), f.Extension())
}

// CSVHeader lists the exported columns in order.
var CSVHeader = []string{
	"Process",
	"Subprocess",
	"Task",
	"Status",
	"Last Updated By",
	"Last Updated At",
	"Comments Count",
}

// TimestampLayout is used for every timestamp written by this package.
const TimestampLayout = time.RFC3339

// CSV renders one row per task. Every cell is wrapped in double quotes with
// embedded quotes doubled, rows are separated by "\n" with no trailing
// newline, and empty updated-by/updated-at cells become "-".
func CSV(processes []domain.Process) string {
	rows := []string{csvRow(CSVHeader)}
	for i := range processes {
		p := &processes[i]
		for j := range p.Subprocesses {
			s := &p.Subprocesses[j]
			for k := range s.Tasks {
				t := &s.Tasks[k]
				rows = append(rows, csvRow([]string{
					p.Name,
					s.Name,
					t.Name,
					string(t.Status),
					orDash(t.LastUpdatedBy),
					formatTime(t.LastUpdatedAt),
					strconv.Itoa(len(t.Comments)),
				}))
			}
		}
	}
	return strings.Join(rows, "\n")
}

func csvRow(cells []string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(TimestampLayout)
}
