package repository

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/procreview/internal/db"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// StoreOptions selects and locates a snapshot backend.
type StoreOptions struct {
	Backend string
	DBPath  string
	File    string
}

// OpenSnapshotStore builds the configured backend. The returned close func
// releases any database handle and is never nil.
func OpenSnapshotStore(opts StoreOptions) (SnapshotStore, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(opts.Backend) {
	case "", BackendSQLite:
		database, err := db.OpenDB(opts.DBPath)
		if err != nil {
			return nil, noop, err
		}
		return NewSQLiteSnapshotStore(database), database.Close, nil
	case BackendFile:
		if opts.File == "" {
			return nil, noop, fmt.Errorf("file store: snapshot file path is empty")
		}
		return NewFileSnapshotStore(opts.File), noop, nil
	case BackendMemory:
		return NewMemorySnapshotStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store %q (want sqlite, file or memory)", opts.Backend)
	}
}
