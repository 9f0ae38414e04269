// Package review holds the pure operations over a review tree: reconciling
// fresh baseline data with stored edits, stamping status and comment changes,
// filtering, and summary statistics. Nothing here performs I/O.
package review

import "github.com/alexanderramin/procreview/internal/domain"

// Merge overlays stored review edits onto freshly fetched processes.
//
// The result has exactly the shape of fresh. For each node matched by id
// (process, then subprocess within that process, then task within that
// subprocess) status, comments and last-updated fields come from stored;
// name, description and children come from fresh. Stored nodes with no fresh
// counterpart are dropped. A nil stored tree returns a copy of fresh.
func Merge(fresh, stored []domain.Process) []domain.Process {
	if stored == nil {
		return domain.CloneProcesses(fresh)
	}

	storedProcs := indexProcesses(stored)
	out := make([]domain.Process, len(fresh))
	for i := range fresh {
		out[i] = mergeProcess(fresh[i], storedProcs[fresh[i].ID])
	}
	return out
}

func mergeProcess(fresh domain.Process, stored *domain.Process) domain.Process {
	if stored == nil {
		return fresh.Clone()
	}
	m := fresh.Clone()
	m.Status = stored.Status
	m.Comments = domain.CloneComments(stored.Comments)
	m.LastUpdatedBy = stored.LastUpdatedBy
	m.LastUpdatedAt = cloneTime(stored.LastUpdatedAt)

	storedSubs := indexSubprocesses(stored.Subprocesses)
	for j := range m.Subprocesses {
		m.Subprocesses[j] = mergeSubprocess(m.Subprocesses[j], storedSubs[m.Subprocesses[j].ID])
	}
	return m
}

// mergeSubprocess receives an already cloned fresh subprocess.
func mergeSubprocess(m domain.Subprocess, stored *domain.Subprocess) domain.Subprocess {
	if stored == nil {
		return m
	}
	m.Status = stored.Status
	m.Comments = domain.CloneComments(stored.Comments)
	m.LastUpdatedBy = stored.LastUpdatedBy
	m.LastUpdatedAt = cloneTime(stored.LastUpdatedAt)

	storedTasks := indexTasks(stored.Tasks)
	for k := range m.Tasks {
		st := storedTasks[m.Tasks[k].ID]
		if st == nil {
			continue
		}
		m.Tasks[k].Status = st.Status
		m.Tasks[k].Comments = domain.CloneComments(st.Comments)
		m.Tasks[k].LastUpdatedBy = st.LastUpdatedBy
		m.Tasks[k].LastUpdatedAt = cloneTime(st.LastUpdatedAt)
	}
	return m
}

// The index helpers keep the first occurrence of a duplicated id.

func indexProcesses(ps []domain.Process) map[string]*domain.Process {
	idx := make(map[string]*domain.Process, len(ps))
	for i := range ps {
		if _, dup := idx[ps[i].ID]; !dup {
			idx[ps[i].ID] = &ps[i]
		}
	}
	return idx
}

func indexSubprocesses(ss []domain.Subprocess) map[string]*domain.Subprocess {
	idx := make(map[string]*domain.Subprocess, len(ss))
	for i := range ss {
		if _, dup := idx[ss[i].ID]; !dup {
			idx[ss[i].ID] = &ss[i]
		}
	}
	return idx
}

func indexTasks(ts []domain.Task) map[string]*domain.Task {
	idx := make(map[string]*domain.Task, len(ts))
	for i := range ts {
		if _, dup := idx[ts[i].ID]; !dup {
			idx[ts[i].ID] = &ts[i]
		}
	}
	return idx
}
