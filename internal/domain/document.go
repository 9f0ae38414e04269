package domain

import "time"

// Document is the owned review tree. Mutations produce a new Document with a
// higher Version; a Document handed out is never modified afterwards.
type Document struct {
	Version   int64
	Processes []Process
}

// NewDocument wraps freshly loaded processes as version 1.
func NewDocument(processes []Process) Document {
	return Document{Version: 1, Processes: processes}
}

// Empty reports whether the document holds no processes.
func (d Document) Empty() bool {
	return len(d.Processes) == 0
}

// FindProcess returns the process with the given id.
func (d Document) FindProcess(id string) (*Process, bool) {
	for i := range d.Processes {
		if d.Processes[i].ID == id {
			return &d.Processes[i], true
		}
	}
	return nil, false
}

// FindSubprocess returns the first subprocess with the given id and its owner.
func (d Document) FindSubprocess(id string) (*Subprocess, *Process, bool) {
	for i := range d.Processes {
		p := &d.Processes[i]
		for j := range p.Subprocesses {
			if p.Subprocesses[j].ID == id {
				return &p.Subprocesses[j], p, true
			}
		}
	}
	return nil, nil, false
}

// FindTask returns the first task with the given id and its owners.
func (d Document) FindTask(id string) (*Task, *Subprocess, *Process, bool) {
	for i := range d.Processes {
		p := &d.Processes[i]
		for j := range p.Subprocesses {
			s := &p.Subprocesses[j]
			for k := range s.Tasks {
				if s.Tasks[k].ID == id {
					return &s.Tasks[k], s, p, true
				}
			}
		}
	}
	return nil, nil, nil, false
}

// LevelOf reports which tier an id belongs to, searching processes first.
func (d Document) LevelOf(id string) (Level, bool) {
	if _, ok := d.FindProcess(id); ok {
		return LevelProcess, true
	}
	if _, _, ok := d.FindSubprocess(id); ok {
		return LevelSubprocess, true
	}
	if _, _, _, ok := d.FindTask(id); ok {
		return LevelTask, true
	}
	return "", false
}

// Snapshot returns a deep copy of the tree suitable for persisting.
func (d Document) Snapshot() []Process {
	return CloneProcesses(d.Processes)
}

// CloneProcesses deep-copies a process slice, including comments.
func CloneProcesses(in []Process) []Process {
	if in == nil {
		return nil
	}
	out := make([]Process, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// Clone deep-copies the process.
func (p Process) Clone() Process {
	c := p
	c.LastUpdatedAt = cloneTime(p.LastUpdatedAt)
	c.Comments = CloneComments(p.Comments)
	if p.Subprocesses != nil {
		c.Subprocesses = make([]Subprocess, len(p.Subprocesses))
		for i := range p.Subprocesses {
			c.Subprocesses[i] = p.Subprocesses[i].Clone()
		}
	}
	return c
}

// Clone deep-copies the subprocess.
func (s Subprocess) Clone() Subprocess {
	c := s
	c.LastUpdatedAt = cloneTime(s.LastUpdatedAt)
	c.Comments = CloneComments(s.Comments)
	if s.Tasks != nil {
		c.Tasks = make([]Task, len(s.Tasks))
		for i := range s.Tasks {
			c.Tasks[i] = s.Tasks[i].Clone()
		}
	}
	return c
}

// Clone deep-copies the task.
func (t Task) Clone() Task {
	c := t
	c.LastUpdatedAt = cloneTime(t.LastUpdatedAt)
	c.Comments = CloneComments(t.Comments)
	return c
}

// CloneComments copies a comment slice. Comments themselves are values.
func CloneComments(in []Comment) []Comment {
	if in == nil {
		return nil
	}
	out := make([]Comment, len(in))
	copy(out, in)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
