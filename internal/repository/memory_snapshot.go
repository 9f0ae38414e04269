package repository

import (
	"context"
	"sync"

	"github.com/alexanderramin/procreview/internal/domain"
)

// MemorySnapshotStore holds the snapshot in process memory. It stores the
// encoded payload so callers never share slices with it.
type MemorySnapshotStore struct {
	mu      sync.Mutex
	payload []byte
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

func (s *MemorySnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payload == nil {
		return nil, ErrNotFound
	}
	return decodeSnapshot(s.payload)
}

func (s *MemorySnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	payload, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.payload = payload
	s.mu.Unlock()
	return nil
}

func (s *MemorySnapshotStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.payload = nil
	s.mu.Unlock()
	return nil
}

// SetRaw stores an arbitrary payload, bypassing encoding.
func (s *MemorySnapshotStore) SetRaw(b []byte) {
	s.mu.Lock()
	s.payload = append([]byte(nil), b...)
	s.mu.Unlock()
}
