package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/fixture"
	"github.com/alexanderramin/procreview/internal/repository"
	"github.com/alexanderramin/procreview/internal/service"
	"github.com/alexanderramin/procreview/internal/teatest"
	"github.com/alexanderramin/procreview/internal/testutil"
	"github.com/alexanderramin/procreview/internal/wizard"
)

// TestDriver wraps teatest.Driver with procreview-specific accessors.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver creates a TestDriver around a fresh appModel and drains the
// initial load.
func NewTestDriver(t *testing.T, app *App, opts ...teatest.Option) *TestDriver {
	t.Helper()
	if len(opts) == 0 {
		opts = []teatest.Option{teatest.WithSize(120, 40)}
	}
	d := teatest.New(t, newAppModel(app), opts...)
	d.DrainInit()
	return &TestDriver{Driver: d}
}

// newTestApp wires an App over the review tree fixture with an in-memory
// store and a fixed clock.
func newTestApp(t *testing.T) *App {
	t.Helper()
	svc := newTestReviewService(t, &fixture.EmbeddedSource{Processes: testutil.NewReviewTree()})
	return &App{
		Review: svc,
		Clock:  func() time.Time { return testutil.FixedTime },
	}
}

func newTestReviewService(t *testing.T, src service.BaselineSource) service.ReviewService {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return service.NewReviewService(src, repository.NewMemorySnapshotStore(), service.ReviewOptions{
		Actor: "qa-lead",
		Clock: func() time.Time { return testutil.FixedTime },
		NewID: testutil.SequentialIDs("c"),
	})
}

// flakySource fails until fail is cleared.
type flakySource struct {
	fail bool
}

func (s *flakySource) FetchProcesses(context.Context) ([]domain.Process, error) {
	if s.fail {
		return nil, errors.New("baseline unavailable")
	}
	return testutil.NewReviewTree(), nil
}

func (d *TestDriver) app() appModel {
	return d.Model.(appModel)
}

func (d *TestDriver) State() *SharedState {
	return d.app().state
}

func (d *TestDriver) ActiveViewID() ViewID {
	m := d.app()
	v := m.activeView()
	if v == nil {
		return -1
	}
	return v.ID()
}

func (d *TestDriver) ViewStackLen() int {
	return len(d.app().viewStack)
}

func (d *TestDriver) Notice() string {
	return d.app().notice
}

func (d *TestDriver) NoticeLevel() noticeLevel {
	return d.app().noticeLevel
}

func (d *TestDriver) Step() wizard.Step {
	return d.State().Wizard.Step()
}

func (d *TestDriver) OutputActive() bool {
	return d.app().outputActive
}

// Task returns the current state of a task in the document.
func (d *TestDriver) Task(id string) domain.Task {
	d.T.Helper()
	tk, _, _, ok := d.State().Doc.FindTask(id)
	if !ok {
		d.T.Fatalf("task %s not in document", id)
	}
	return *tk
}
