package review

import (
	"math"

	"github.com/alexanderramin/procreview/internal/domain"
)

// Stats aggregates task-level review progress across a set of processes.
type Stats struct {
	TotalProcesses int
	TotalTasks     int
	Approved       int
	Pending        int
	NeedsFix       int
	CompletionPct  int // approved / total, rounded
	PerProcess     []ProcessProgress
}

// ProcessProgress is the approved/total task count for one process.
type ProcessProgress struct {
	ProcessID string
	Name      string
	Approved  int
	Total     int
}

// ComputeStats counts task statuses. Process and subprocess statuses do not
// contribute; they are reviewed independently.
func ComputeStats(processes []domain.Process) Stats {
	st := Stats{TotalProcesses: len(processes)}
	for _, p := range processes {
		pp := ProcessProgress{ProcessID: p.ID, Name: p.Name}
		for _, s := range p.Subprocesses {
			for _, t := range s.Tasks {
				st.TotalTasks++
				pp.Total++
				switch t.Status {
				case domain.StatusApproved:
					st.Approved++
					pp.Approved++
				case domain.StatusPending:
					st.Pending++
				case domain.StatusNeedsFix:
					st.NeedsFix++
				}
			}
		}
		st.PerProcess = append(st.PerProcess, pp)
	}
	if st.TotalTasks > 0 {
		st.CompletionPct = int(math.Round(float64(st.Approved) / float64(st.TotalTasks) * 100))
	}
	return st
}

// StatusCounts holds a count per review status.
type StatusCounts struct {
	Approved int
	Pending  int
	NeedsFix int
}

func (c *StatusCounts) add(s domain.Status) {
	switch s {
	case domain.StatusApproved:
		c.Approved++
	case domain.StatusPending:
		c.Pending++
	case domain.StatusNeedsFix:
		c.NeedsFix++
	}
}

// Summary describes one process ahead of finalizing its review.
type Summary struct {
	ProcessID       string
	ProcessName     string
	ProcessStatus   domain.Status
	Subprocesses    int
	Tasks           int
	SubprocessState StatusCounts
	TaskState       StatusCounts
}

// AllReviewed reports whether no subprocess or task is still pending.
func (s Summary) AllReviewed() bool {
	return s.SubprocessState.Pending == 0 && s.TaskState.Pending == 0
}

// HasNeedsFix reports whether any subprocess or task needs a fix.
func (s Summary) HasNeedsFix() bool {
	return s.SubprocessState.NeedsFix > 0 || s.TaskState.NeedsFix > 0
}

// Summarize builds the confirmation summary for a process.
func Summarize(p domain.Process) Summary {
	sum := Summary{
		ProcessID:     p.ID,
		ProcessName:   p.Name,
		ProcessStatus: p.Status,
		Subprocesses:  len(p.Subprocesses),
	}
	for _, s := range p.Subprocesses {
		sum.SubprocessState.add(s.Status)
		for _, t := range s.Tasks {
			sum.Tasks++
			sum.TaskState.add(t.Status)
		}
	}
	return sum
}
