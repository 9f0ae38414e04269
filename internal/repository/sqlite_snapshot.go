package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/procreview/internal/db"
	"github.com/alexanderramin/procreview/internal/domain"
)

// SQLiteSnapshotStore keeps the snapshot as a JSON payload in the snapshots
// table.
type SQLiteSnapshotStore struct {
	uow db.UnitOfWork
	db  db.DBTX
	key string
}

// NewSQLiteSnapshotStore creates a store over database. Writes run inside a
// transaction.
func NewSQLiteSnapshotStore(database *sql.DB) *SQLiteSnapshotStore {
	return &SQLiteSnapshotStore{
		uow: db.NewSQLiteUnitOfWork(database),
		db:  database,
		key: SnapshotKey,
	}
}

// WithUnitOfWork swaps the transaction runner, mainly for failure injection.
func (s *SQLiteSnapshotStore) WithUnitOfWork(uow db.UnitOfWork) *SQLiteSnapshotStore {
	s.uow = uow
	return s
}

func (s *SQLiteSnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	var payload string
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, version FROM snapshots WHERE key = ?`, s.key,
	).Scan(&payload, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %q: %w", s.key, ErrNotFound)
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	snap, err := decodeSnapshot([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", s.key, err)
	}
	if snap.Version == 0 {
		snap.Version = version
	}
	return snap, nil
}

func (s *SQLiteSnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	payload, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO snapshots (key, payload, last_sync, updated_at, version)
			VALUES (?, ?, ?, ?, ?)`,
			s.key,
			string(payload),
			snap.LastSync.UTC().Format(timeLayout),
			nowUTC(),
			snap.Version,
		)
		if err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		return nil
	})
}

func (s *SQLiteSnapshotStore) Clear(ctx context.Context) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, s.key); err != nil {
			return fmt.Errorf("clearing snapshot: %w", err)
		}
		return nil
	})
}
