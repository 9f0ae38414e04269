package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/export"
	"github.com/alexanderramin/procreview/internal/repository"
	"github.com/alexanderramin/procreview/internal/review"
	"github.com/google/uuid"
)

// ReviewOptions carries the injectable parts of the review service.
type ReviewOptions struct {
	Actor domain.Actor
	Clock func() time.Time
	NewID review.IDFunc
	// PageLines is the report page length.
	PageLines int
}

type reviewService struct {
	source   BaselineSource
	store    repository.SnapshotStore
	observer UseCaseObserver

	actor     domain.Actor
	clock     func() time.Time
	newID     review.IDFunc
	pageLines int

	mu     sync.Mutex
	doc    domain.Document
	loaded bool
}

func NewReviewService(
	source BaselineSource,
	store repository.SnapshotStore,
	opts ReviewOptions,
	observers ...UseCaseObserver,
) ReviewService {
	s := &reviewService{
		source:    source,
		store:     store,
		observer:  useCaseObserverOrNoop(observers),
		actor:     opts.Actor,
		clock:     opts.Clock,
		newID:     opts.NewID,
		pageLines: opts.PageLines,
	}
	if s.actor == "" {
		s.actor = domain.DefaultActor
	}
	if s.clock == nil {
		s.clock = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.pageLines <= 0 {
		s.pageLines = export.DefaultPageLines
	}
	return s
}

func (s *reviewService) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, warnings []string, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Warnings:  warnings,
		Fields:    fields,
	})
}

func (s *reviewService) Load(ctx context.Context) (doc domain.Document, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	var warnings []string
	defer func() { s.observe(ctx, "load", startedAt, fields, warnings, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, fields, &warnings)
}

func (s *reviewService) loadLocked(ctx context.Context, fields map[string]any, warnings *[]string) (domain.Document, error) {
	fresh, err := s.source.FetchProcesses(ctx)
	if err != nil {
		return domain.Document{}, fmt.Errorf("loading processes: %w", err)
	}

	stored, err := s.store.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		stored = nil
	case errors.Is(err, repository.ErrCorruptSnapshot):
		*warnings = append(*warnings, "ignoring unreadable stored review state: "+err.Error())
		stored = nil
	default:
		return domain.Document{}, fmt.Errorf("loading stored review state: %w", err)
	}

	doc := domain.NewDocument(fresh)
	if stored != nil {
		doc = domain.Document{
			Version:   stored.Version + 1,
			Processes: review.Merge(fresh, stored.Processes),
		}
		fields["stored_version"] = stored.Version
	}
	fields["processes"] = len(doc.Processes)
	fields["merged"] = stored != nil

	if err := s.saveLocked(ctx, doc); err != nil {
		return domain.Document{}, err
	}
	s.doc = doc
	s.loaded = true
	return doc, nil
}

// saveLocked persists doc. Empty trees are skipped so an empty baseline never
// overwrites stored edits.
func (s *reviewService) saveLocked(ctx context.Context, doc domain.Document) error {
	if doc.Empty() {
		return nil
	}
	snap := &domain.Snapshot{
		Processes: doc.Snapshot(),
		LastSync:  s.clock(),
		Version:   doc.Version,
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving review state: %w", err)
	}
	return nil
}

func (s *reviewService) Document() (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return domain.Document{}, ErrNotLoaded
	}
	return s.doc, nil
}

func (s *reviewService) stamp() review.Stamp {
	return review.Stamp{Actor: s.actor, At: s.clock()}
}

// resolveLevel finds which tier id belongs to when level is empty.
func (s *reviewService) resolveLevel(level domain.Level, id string) (domain.Level, error) {
	if level != "" {
		return level, nil
	}
	l, ok := s.doc.LevelOf(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", review.ErrNodeNotFound, id)
	}
	return l, nil
}

// commitLocked persists next and makes it current. On a save failure the
// in-memory document still advances; the edit is retried with the next save.
func (s *reviewService) commitLocked(ctx context.Context, next domain.Document) error {
	s.doc = next
	return s.saveLocked(ctx, next)
}

func (s *reviewService) SetStatus(ctx context.Context, level domain.Level, id string, status domain.Status) (doc domain.Document, err error) {
	startedAt := time.Now()
	fields := map[string]any{"id": id, "status": string(status)}
	defer func() { s.observe(ctx, "set-status", startedAt, fields, nil, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return domain.Document{}, ErrNotLoaded
	}

	level, err = s.resolveLevel(level, id)
	if err != nil {
		return s.doc, err
	}
	fields["level"] = string(level)

	var next domain.Document
	switch level {
	case domain.LevelProcess:
		next, err = review.SetProcessStatus(s.doc, id, status, s.stamp())
	case domain.LevelSubprocess:
		next, err = review.SetSubprocessStatus(s.doc, id, status, s.stamp())
	case domain.LevelTask:
		next, err = review.SetTaskStatus(s.doc, id, status, s.stamp())
	default:
		err = fmt.Errorf("unknown level %q", level)
	}
	if err != nil {
		return s.doc, err
	}
	if err := s.commitLocked(ctx, next); err != nil {
		return next, err
	}
	return next, nil
}

func (s *reviewService) AddComment(ctx context.Context, level domain.Level, id, text string) (doc domain.Document, err error) {
	startedAt := time.Now()
	fields := map[string]any{"id": id}
	defer func() { s.observe(ctx, "add-comment", startedAt, fields, nil, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return domain.Document{}, ErrNotLoaded
	}

	level, err = s.resolveLevel(level, id)
	if err != nil {
		return s.doc, err
	}
	fields["level"] = string(level)

	var next domain.Document
	switch level {
	case domain.LevelProcess:
		next, err = review.AddProcessComment(s.doc, id, text, s.stamp(), s.newID)
	case domain.LevelSubprocess:
		next, err = review.AddSubprocessComment(s.doc, id, text, s.stamp(), s.newID)
	case domain.LevelTask:
		next, err = review.AddTaskComment(s.doc, id, text, s.stamp(), s.newID)
	default:
		err = fmt.Errorf("unknown level %q", level)
	}
	if err != nil {
		return s.doc, err
	}
	if err := s.commitLocked(ctx, next); err != nil {
		return next, err
	}
	return next, nil
}

func (s *reviewService) BulkSetTaskStatus(ctx context.Context, taskIDs []string, status domain.Status) (res review.BulkResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"requested": len(taskIDs), "status": string(status)}
	defer func() { s.observe(ctx, "bulk-set-status", startedAt, fields, nil, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return review.BulkResult{}, ErrNotLoaded
	}

	res, err = review.BulkSetTaskStatus(s.doc, taskIDs, status, s.stamp())
	if err != nil {
		return review.BulkResult{Doc: s.doc}, err
	}
	fields["updated"] = res.Updated
	if res.Doc.Version == s.doc.Version {
		return res, nil
	}
	if err := s.commitLocked(ctx, res.Doc); err != nil {
		return res, err
	}
	return res, nil
}

func (s *reviewService) Filter(search string, status domain.StatusFilter) ([]domain.Process, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	return review.Filter(doc.Processes, search, status), nil
}

func (s *reviewService) Stats() (review.Stats, error) {
	doc, err := s.Document()
	if err != nil {
		return review.Stats{}, err
	}
	return review.ComputeStats(doc.Processes), nil
}

func (s *reviewService) Summary(processID string) (review.Summary, error) {
	doc, err := s.Document()
	if err != nil {
		return review.Summary{}, err
	}
	p, ok := doc.FindProcess(processID)
	if !ok {
		return review.Summary{}, fmt.Errorf("%w: process %q", review.ErrNodeNotFound, processID)
	}
	return review.Summarize(*p), nil
}

func (s *reviewService) Reset(ctx context.Context) (doc domain.Document, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	var warnings []string
	defer func() { s.observe(ctx, "reset", startedAt, fields, warnings, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return domain.Document{}, fmt.Errorf("clearing review state: %w", err)
	}
	s.loaded = false
	s.doc = domain.Document{}
	return s.loadLocked(ctx, fields, &warnings)
}

func (s *reviewService) Export(ctx context.Context, format export.Format, now time.Time) (out string, err error) {
	startedAt := time.Now()
	fields := map[string]any{"format": string(format)}
	defer func() { s.observe(ctx, "export", startedAt, fields, nil, err) }()

	doc, err := s.Document()
	if err != nil {
		return "", err
	}
	switch format {
	case export.FormatCSV:
		out = export.CSV(doc.Processes)
	case export.FormatReport:
		out = export.Report(doc.Processes, export.ReportOptions{GeneratedAt: now, PageLines: s.pageLines})
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	fields["bytes"] = len(out)
	return out, nil
}
