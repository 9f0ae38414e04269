package review

import (
	"strings"

	"github.com/alexanderramin/procreview/internal/domain"
)

// Filter returns the processes that match both the search text and the status
// filter. Matching processes are returned whole; children are never pruned.
//
// Search is a case-insensitive substring test against the process name and
// description, subprocess names and task names. An empty search matches
// everything. The status filter matches when the process, any subprocess or
// any task carries the status.
func Filter(processes []domain.Process, search string, status domain.StatusFilter) []domain.Process {
	query := strings.ToLower(search)
	var out []domain.Process
	for i := range processes {
		p := &processes[i]
		if matchesSearch(p, query) && matchesStatus(p, status) {
			out = append(out, *p)
		}
	}
	return out
}

func matchesSearch(p *domain.Process, query string) bool {
	if query == "" {
		return true
	}
	if containsFold(p.Name, query) || containsFold(p.Description, query) {
		return true
	}
	for _, s := range p.Subprocesses {
		if containsFold(s.Name, query) {
			return true
		}
		for _, t := range s.Tasks {
			if containsFold(t.Name, query) {
				return true
			}
		}
	}
	return false
}

func matchesStatus(p *domain.Process, f domain.StatusFilter) bool {
	if f.IsAll() || f.Matches(p.Status) {
		return true
	}
	for _, s := range p.Subprocesses {
		if f.Matches(s.Status) {
			return true
		}
		for _, t := range s.Tasks {
			if f.Matches(t.Status) {
				return true
			}
		}
	}
	return false
}

// containsFold expects query already lowercased.
func containsFold(s, query string) bool {
	return strings.Contains(strings.ToLower(s), query)
}
