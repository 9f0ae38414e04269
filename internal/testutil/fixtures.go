package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
)

var testIDCounter atomic.Int64

func nextID(prefix string) string {
	return fmt.Sprintf("%s-%03d", prefix, testIDCounter.Add(1))
}

// FixedTime is a stable clock reading for deterministic assertions.
var FixedTime = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// Task options
type TaskOption func(*domain.Task)

func WithTaskID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
	}
}

func WithTaskStatus(s domain.Status) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithTaskDescription(d string) TaskOption {
	return func(t *domain.Task) {
		t.Description = d
	}
}

func WithTaskComments(cs ...domain.Comment) TaskOption {
	return func(t *domain.Task) {
		t.Comments = cs
	}
}

func WithTaskUpdate(by string, at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.LastUpdatedBy = by
		t.LastUpdatedAt = &at
	}
}

func NewTestTask(name string, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:          nextID("task"),
		Name:        name,
		Description: name + " description",
		Status:      domain.StatusPending,
		Comments:    []domain.Comment{},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Subprocess options
type SubprocessOption func(*domain.Subprocess)

func WithSubprocessID(id string) SubprocessOption {
	return func(s *domain.Subprocess) {
		s.ID = id
	}
}

func WithSubprocessStatus(st domain.Status) SubprocessOption {
	return func(s *domain.Subprocess) {
		s.Status = st
	}
}

func WithTasks(ts ...domain.Task) SubprocessOption {
	return func(s *domain.Subprocess) {
		s.Tasks = ts
	}
}

func NewTestSubprocess(name string, opts ...SubprocessOption) domain.Subprocess {
	s := domain.Subprocess{
		ID:          nextID("sub"),
		Name:        name,
		Description: name + " description",
		Status:      domain.StatusPending,
		Tasks:       []domain.Task{},
		Comments:    []domain.Comment{},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Process options
type ProcessOption func(*domain.Process)

func WithProcessID(id string) ProcessOption {
	return func(p *domain.Process) {
		p.ID = id
	}
}

func WithProcessStatus(s domain.Status) ProcessOption {
	return func(p *domain.Process) {
		p.Status = s
	}
}

func WithProcessDescription(d string) ProcessOption {
	return func(p *domain.Process) {
		p.Description = d
	}
}

func WithSubprocesses(ss ...domain.Subprocess) ProcessOption {
	return func(p *domain.Process) {
		p.Subprocesses = ss
	}
}

func WithProcessComments(cs ...domain.Comment) ProcessOption {
	return func(p *domain.Process) {
		p.Comments = cs
	}
}

func NewTestProcess(name string, opts ...ProcessOption) domain.Process {
	p := domain.Process{
		ID:           nextID("proc"),
		Name:         name,
		Description:  name + " description",
		Status:       domain.StatusPending,
		Subprocesses: []domain.Subprocess{},
		Comments:     []domain.Comment{},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func NewTestComment(id, text, user string) domain.Comment {
	return domain.Comment{ID: id, Text: text, User: user, Timestamp: FixedTime}
}

// NewReviewTree builds a small two-process tree with stable ids:
//
//	p-mix  "Mixing"     s-blend "Blending"  t-load, t-blend
//	                    s-dry   "Drying"    t-dry
//	p-pack "Packaging"  s-fill  "Filling"   t-fill (Needs Fix)
func NewReviewTree() []domain.Process {
	return []domain.Process{
		NewTestProcess("Mixing",
			WithProcessID("p-mix"),
			WithProcessDescription("Blend active ingredients with excipients"),
			WithSubprocesses(
				NewTestSubprocess("Blending", WithSubprocessID("s-blend"), WithTasks(
					NewTestTask("Load hopper", WithTaskID("t-load")),
					NewTestTask("Run blender", WithTaskID("t-blend")),
				)),
				NewTestSubprocess("Drying", WithSubprocessID("s-dry"), WithTasks(
					NewTestTask("Check moisture", WithTaskID("t-dry")),
				)),
			),
		),
		NewTestProcess("Packaging",
			WithProcessID("p-pack"),
			WithProcessDescription("Primary and secondary packaging"),
			WithSubprocesses(
				NewTestSubprocess("Filling", WithSubprocessID("s-fill"), WithTasks(
					NewTestTask("Fill blisters", WithTaskID("t-fill"), WithTaskStatus(domain.StatusNeedsFix)),
				)),
			),
		),
	}
}

// NewTestDocument wraps NewReviewTree as version 1.
func NewTestDocument() domain.Document {
	return domain.NewDocument(NewReviewTree())
}

// SequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}
