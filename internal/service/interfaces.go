package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/export"
	"github.com/alexanderramin/procreview/internal/review"
)

// ErrNotLoaded is returned by operations that need the review tree before
// Load has succeeded.
var ErrNotLoaded = errors.New("review data not loaded")

// BaselineSource produces the fresh review tree.
type BaselineSource interface {
	FetchProcesses(ctx context.Context) ([]domain.Process, error)
}

// ReviewService owns the current review document. Every mutation persists
// the full tree before returning.
type ReviewService interface {
	// Load fetches the baseline, overlays stored review state and saves the
	// merged tree.
	Load(ctx context.Context) (domain.Document, error)
	Document() (domain.Document, error)

	SetStatus(ctx context.Context, level domain.Level, id string, status domain.Status) (domain.Document, error)
	AddComment(ctx context.Context, level domain.Level, id, text string) (domain.Document, error)
	BulkSetTaskStatus(ctx context.Context, taskIDs []string, status domain.Status) (review.BulkResult, error)

	Filter(search string, status domain.StatusFilter) ([]domain.Process, error)
	Stats() (review.Stats, error)
	Summary(processID string) (review.Summary, error)

	// Reset erases stored review state and reloads the baseline.
	Reset(ctx context.Context) (domain.Document, error)

	Export(ctx context.Context, format export.Format, now time.Time) (string, error)
}
