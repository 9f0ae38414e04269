package formatter

import (
	"strings"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title  string
	ID     string
	Level  int
	IsLast bool
	Status domain.Status
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeSpace  = "   "
)

// RenderTree renders TreeItems as an indented tree using box-drawing
// connectors. Each title is prefixed with its status glyph and status badges
// are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// lastAt[level] records whether the most recent item at that level was
	// the last of its siblings, which decides pipe vs blank for descendants.
	lastAt := map[int]bool{}

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				if lastAt[i] {
					prefix += treeSpace
				} else {
					prefix += treePipe
				}
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}
		lastAt[item.Level] = item.IsLast

		title := item.Title
		if item.Status == domain.StatusApproved {
			title = Dim(title)
		}
		if item.ID != "" {
			title += " " + Dim("("+item.ID+")")
		}
		content := prefix + StatusColor(item.Status).Render(StatusGlyph(item.Status)+" ") + title
		lines[idx].content = content

		badge := string(item.Status)
		if item.Detail != "" {
			badge += " · " + item.Detail
		}
		lines[idx].badge = StatusColor(item.Status).Render("[ " + badge + " ]")

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		pad := maxContentWidth - lipgloss.Width(li.content)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
	}

	return b.String()
}

// ProcessTree flattens a process into TreeItems: the process at level 0,
// subprocesses at level 1 and tasks at level 2.
func ProcessTree(p domain.Process) []TreeItem {
	items := []TreeItem{{Title: p.Name, ID: p.ID, Status: p.Status, Detail: commentDetail(len(p.Comments))}}
	for i, s := range p.Subprocesses {
		items = append(items, TreeItem{
			Title:  s.Name,
			ID:     s.ID,
			Level:  1,
			IsLast: i == len(p.Subprocesses)-1,
			Status: s.Status,
			Detail: commentDetail(len(s.Comments)),
		})
		for j, t := range s.Tasks {
			items = append(items, TreeItem{
				Title:  t.Name,
				ID:     t.ID,
				Level:  2,
				IsLast: j == len(s.Tasks)-1,
				Status: t.Status,
				Detail: commentDetail(len(t.Comments)),
			})
		}
	}
	return items
}

func commentDetail(n int) string {
	if n == 0 {
		return ""
	}
	return Plural(n, "comment")
}
