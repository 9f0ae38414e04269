package export

import (
	"strconv"
	"strings"
	"testing"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Content(t *testing.T) {
	got := Report(testutil.NewReviewTree(), ReportOptions{GeneratedAt: testutil.FixedTime})

	assert.True(t, strings.HasPrefix(got, "Process Review Report\nGenerated: 2025-06-15 10:00\n"))
	assert.Contains(t, got, "Process 1: Mixing")
	assert.Contains(t, got, "Blend active ingredients with excipients")
	assert.Contains(t, got, "Process 2: Packaging")
	assert.Contains(t, got, "Status: Pending")
	assert.Contains(t, got, "Last Updated: -")
	assert.Contains(t, got, "Comments: 0")
	assert.Contains(t, got, "  Blending (Pending)")
	assert.Contains(t, got, "Task")
	assert.Contains(t, got, "Updated By")
	assert.Contains(t, got, "Fill blisters")
	assert.Contains(t, got, "Page 1 of 1")
	assert.NotContains(t, got, pageBreak)
}

func TestReport_TableColumnsAligned(t *testing.T) {
	got := Report(testutil.NewReviewTree(), ReportOptions{GeneratedAt: testutil.FixedTime})

	var header, row string
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "  Task") && header == "" {
			header = line
		}
		if strings.HasPrefix(line, "  Load hopper") {
			row = line
		}
	}
	require.NotEmpty(t, header)
	require.NotEmpty(t, row)
	assert.Equal(t, strings.Index(header, "Status"), strings.Index(row, "Pending"))
}

func TestReport_Paginates(t *testing.T) {
	got := Report(testutil.NewReviewTree(), ReportOptions{GeneratedAt: testutil.FixedTime, PageLines: 10})

	pages := strings.Split(got, pageBreak)
	require.Greater(t, len(pages), 1)
	for i, page := range pages {
		body := strings.Split(strings.TrimRight(page, "\n"), "\n")
		// two footer lines: blank + "Page i of n"
		assert.LessOrEqual(t, len(body)-2, 10, "page %d over budget", i+1)
		assert.Contains(t, page, "of "+strconv.Itoa(len(pages)))
	}
}

func TestReport_EmptyTree(t *testing.T) {
	got := Report(nil, ReportOptions{GeneratedAt: testutil.FixedTime})
	assert.Contains(t, got, "No processes to report.")
	assert.Contains(t, got, "Page 1 of 1")
}

func TestReport_SubprocessWithoutTasks(t *testing.T) {
	procs := []domain.Process{
		testutil.NewTestProcess("Solo", testutil.WithSubprocesses(testutil.NewTestSubprocess("Idle"))),
	}
	got := Report(procs, ReportOptions{GeneratedAt: testutil.FixedTime})
	assert.Contains(t, got, "  No tasks.")
}

func TestPaginate_SplitsOversizedBlock(t *testing.T) {
	block := make([]string, 7)
	pages := paginate([][]string{{"a"}, block}, 3)

	require.Len(t, pages, 4)
	assert.Equal(t, []string{"a"}, pages[0])
	assert.Len(t, pages[1], 3)
	assert.Len(t, pages[2], 3)
	assert.Len(t, pages[3], 1)
}

func TestPaginate_KeepsSmallBlocksTogether(t *testing.T) {
	pages := paginate([][]string{{"a", "b"}, {"c", "d"}, {"e"}}, 4)

	require.Len(t, pages, 2)
	assert.Equal(t, []string{"a", "b", "c", "d"}, pages[0])
	assert.Equal(t, []string{"e"}, pages[1])
}
