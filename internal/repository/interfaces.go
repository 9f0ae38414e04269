package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/procreview/internal/domain"
)

// SnapshotKey is the single key the review state is stored under.
const SnapshotKey = "process-review-state"

var (
	// ErrNotFound means no snapshot has been saved (or it was cleared).
	ErrNotFound = errors.New("not found")
	// ErrCorruptSnapshot means a stored payload could not be decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// SnapshotStore persists the whole review tree as one keyed blob. Save
// overwrites wholesale; Clear removes it.
type SnapshotStore interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, s *domain.Snapshot) error
	Clear(ctx context.Context) error
}
