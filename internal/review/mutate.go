package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
)

var (
	// ErrNodeNotFound is returned when a mutation targets an unknown id.
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidStatus is returned for a status outside Pending/Approved/Needs Fix.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrEmptyComment is returned when comment text is blank.
	ErrEmptyComment = errors.New("comment text is empty")
)

// Stamp records who made a change and when. Every node touched by a mutation
// gets LastUpdatedBy and LastUpdatedAt from it.
type Stamp struct {
	Actor domain.Actor
	At    time.Time
}

// IDFunc produces a fresh comment id.
type IDFunc func() string

// BulkResult is the outcome of BulkSetTaskStatus.
type BulkResult struct {
	Doc     domain.Document
	Updated int
}

// SetProcessStatus changes one process's status. Children are untouched.
func SetProcessStatus(doc domain.Document, processID string, status domain.Status, st Stamp) (domain.Document, error) {
	if !status.Valid() {
		return doc, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return updateProcesses(doc, processID, func(p *domain.Process) {
		p.Status = status
		stampProcess(p, st)
	})
}

// SetSubprocessStatus changes the status of every subprocess with the id.
// Neither the owning process nor the tasks change.
func SetSubprocessStatus(doc domain.Document, subprocessID string, status domain.Status, st Stamp) (domain.Document, error) {
	if !status.Valid() {
		return doc, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return updateSubprocesses(doc, subprocessID, func(s *domain.Subprocess) {
		s.Status = status
		stampSubprocess(s, st)
	})
}

// SetTaskStatus changes the status of every task with the id.
func SetTaskStatus(doc domain.Document, taskID string, status domain.Status, st Stamp) (domain.Document, error) {
	if !status.Valid() {
		return doc, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	ids := map[string]bool{taskID: true}
	res := updateTasks(doc, ids, func(t *domain.Task) {
		t.Status = status
		stampTask(t, st)
	})
	if res.Updated == 0 {
		return doc, fmt.Errorf("task %q: %w", taskID, ErrNodeNotFound)
	}
	return res.Doc, nil
}

// BulkSetTaskStatus applies one status to every listed task in a single pass.
// Unknown ids are ignored; an empty id list leaves the document unchanged.
func BulkSetTaskStatus(doc domain.Document, taskIDs []string, status domain.Status, st Stamp) (BulkResult, error) {
	if !status.Valid() {
		return BulkResult{Doc: doc}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if len(taskIDs) == 0 {
		return BulkResult{Doc: doc}, nil
	}
	ids := make(map[string]bool, len(taskIDs))
	for _, id := range taskIDs {
		ids[id] = true
	}
	return updateTasks(doc, ids, func(t *domain.Task) {
		t.Status = status
		stampTask(t, st)
	}), nil
}

// AddProcessComment prepends a new comment to a process. Status is untouched.
func AddProcessComment(doc domain.Document, processID, text string, st Stamp, newID IDFunc) (domain.Document, error) {
	c, err := newComment(text, st, newID)
	if err != nil {
		return doc, err
	}
	return updateProcesses(doc, processID, func(p *domain.Process) {
		p.Comments = prepend(c, p.Comments)
		stampProcess(p, st)
	})
}

// AddSubprocessComment prepends a new comment to a subprocess.
func AddSubprocessComment(doc domain.Document, subprocessID, text string, st Stamp, newID IDFunc) (domain.Document, error) {
	c, err := newComment(text, st, newID)
	if err != nil {
		return doc, err
	}
	return updateSubprocesses(doc, subprocessID, func(s *domain.Subprocess) {
		s.Comments = prepend(c, s.Comments)
		stampSubprocess(s, st)
	})
}

// AddTaskComment prepends a new comment to a task.
func AddTaskComment(doc domain.Document, taskID, text string, st Stamp, newID IDFunc) (domain.Document, error) {
	c, err := newComment(text, st, newID)
	if err != nil {
		return doc, err
	}
	res := updateTasks(doc, map[string]bool{taskID: true}, func(t *domain.Task) {
		t.Comments = prepend(c, t.Comments)
		stampTask(t, st)
	})
	if res.Updated == 0 {
		return doc, fmt.Errorf("task %q: %w", taskID, ErrNodeNotFound)
	}
	return res.Doc, nil
}

// ── structural copy helpers ──────────────────────────────────────────────────
//
// Only the path to a changed node is reallocated. Untouched siblings share
// their backing arrays with the previous version, which is safe because no
// Document is modified after it is handed out.

func updateProcesses(doc domain.Document, id string, fn func(*domain.Process)) (domain.Document, error) {
	procs := make([]domain.Process, len(doc.Processes))
	copy(procs, doc.Processes)
	found := false
	for i := range procs {
		if procs[i].ID != id {
			continue
		}
		procs[i].Comments = domain.CloneComments(procs[i].Comments)
		fn(&procs[i])
		found = true
		break
	}
	if !found {
		return doc, fmt.Errorf("process %q: %w", id, ErrNodeNotFound)
	}
	return domain.Document{Version: doc.Version + 1, Processes: procs}, nil
}

func updateSubprocesses(doc domain.Document, id string, fn func(*domain.Subprocess)) (domain.Document, error) {
	procs := make([]domain.Process, len(doc.Processes))
	copy(procs, doc.Processes)
	found := false
	for i := range procs {
		var subs []domain.Subprocess
		for j := range procs[i].Subprocesses {
			if procs[i].Subprocesses[j].ID != id {
				continue
			}
			if subs == nil {
				subs = make([]domain.Subprocess, len(procs[i].Subprocesses))
				copy(subs, procs[i].Subprocesses)
			}
			subs[j].Comments = domain.CloneComments(subs[j].Comments)
			fn(&subs[j])
			found = true
		}
		if subs != nil {
			procs[i].Subprocesses = subs
		}
	}
	if !found {
		return doc, fmt.Errorf("subprocess %q: %w", id, ErrNodeNotFound)
	}
	return domain.Document{Version: doc.Version + 1, Processes: procs}, nil
}

func updateTasks(doc domain.Document, ids map[string]bool, fn func(*domain.Task)) BulkResult {
	procs := make([]domain.Process, len(doc.Processes))
	copy(procs, doc.Processes)
	updated := 0
	for i := range procs {
		var subs []domain.Subprocess
		for j := range procs[i].Subprocesses {
			var tasks []domain.Task
			for k, t := range procs[i].Subprocesses[j].Tasks {
				if !ids[t.ID] {
					continue
				}
				if tasks == nil {
					tasks = make([]domain.Task, len(procs[i].Subprocesses[j].Tasks))
					copy(tasks, procs[i].Subprocesses[j].Tasks)
				}
				tasks[k].Comments = domain.CloneComments(tasks[k].Comments)
				fn(&tasks[k])
				updated++
			}
			if tasks == nil {
				continue
			}
			if subs == nil {
				subs = make([]domain.Subprocess, len(procs[i].Subprocesses))
				copy(subs, procs[i].Subprocesses)
			}
			subs[j].Tasks = tasks
		}
		if subs != nil {
			procs[i].Subprocesses = subs
		}
	}
	if updated == 0 {
		return BulkResult{Doc: doc}
	}
	return BulkResult{Doc: domain.Document{Version: doc.Version + 1, Processes: procs}, Updated: updated}
}

func newComment(text string, st Stamp, newID IDFunc) (domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, ErrEmptyComment
	}
	return domain.Comment{
		ID:        newID(),
		Text:      text,
		User:      string(st.Actor),
		Timestamp: st.At,
	}, nil
}

func prepend(c domain.Comment, list []domain.Comment) []domain.Comment {
	out := make([]domain.Comment, 0, len(list)+1)
	out = append(out, c)
	return append(out, list...)
}

func stampProcess(p *domain.Process, st Stamp) {
	p.LastUpdatedBy = string(st.Actor)
	p.LastUpdatedAt = timePtr(st.At)
}

func stampSubprocess(s *domain.Subprocess, st Stamp) {
	s.LastUpdatedBy = string(st.Actor)
	s.LastUpdatedAt = timePtr(st.At)
}

func stampTask(t *domain.Task, st Stamp) {
	t.LastUpdatedBy = string(st.Actor)
	t.LastUpdatedAt = timePtr(st.At)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
