package domain

import "time"

// Comment is an immutable reviewer note. Owners keep comments newest first.
type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	User      string    `json:"user" yaml:"user"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Task is a leaf of the review hierarchy.
type Task struct {
	ID            string     `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	Description   string     `json:"description" yaml:"description"`
	Status        Status     `json:"status" yaml:"status"`
	LastUpdatedBy string     `json:"lastUpdatedBy" yaml:"lastUpdatedBy"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty" yaml:"lastUpdatedAt,omitempty"`
	Comments      []Comment  `json:"comments" yaml:"comments"`
}

// Subprocess owns an ordered list of tasks.
type Subprocess struct {
	ID            string     `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	Description   string     `json:"description" yaml:"description"`
	Status        Status     `json:"status" yaml:"status"`
	LastUpdatedBy string     `json:"lastUpdatedBy" yaml:"lastUpdatedBy"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty" yaml:"lastUpdatedAt,omitempty"`
	Tasks         []Task     `json:"tasks" yaml:"tasks"`
	Comments      []Comment  `json:"comments" yaml:"comments"`
}

// Process is a top-level node that owns an ordered list of subprocesses.
type Process struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	Description   string       `json:"description" yaml:"description"`
	Status        Status       `json:"status" yaml:"status"`
	LastUpdatedBy string       `json:"lastUpdatedBy" yaml:"lastUpdatedBy"`
	LastUpdatedAt *time.Time   `json:"lastUpdatedAt,omitempty" yaml:"lastUpdatedAt,omitempty"`
	Subprocesses  []Subprocess `json:"subprocesses" yaml:"subprocesses"`
	Comments      []Comment    `json:"comments" yaml:"comments"`
}

// TaskCount returns the number of tasks across all subprocesses.
func (p *Process) TaskCount() int {
	n := 0
	for i := range p.Subprocesses {
		n += len(p.Subprocesses[i].Tasks)
	}
	return n
}

// Snapshot is the persisted review state: the full tree plus the time it was
// written. It is overwritten wholesale on every save.
type Snapshot struct {
	Processes []Process `json:"processes"`
	LastSync  time.Time `json:"lastSync"`
	Version   int64     `json:"version"`
}

// Actor identifies the reviewer performing a mutation.
type Actor string

// DefaultActor is used when no reviewer identity is configured.
const DefaultActor Actor = "Reviewer 1"
