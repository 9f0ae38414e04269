package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/alexanderramin/procreview/internal/db"
)

// FailingExecUoW wraps a UnitOfWork and returns Err from the Nth
// ExecContext call, counting from 1 across every transaction it runs.
// Reads pass through.
type FailingExecUoW struct {
	Inner  db.UnitOfWork
	FailOn int32
	Err    error

	execs atomic.Int32
}

// NewFailingExecUoW wraps a real SQLite unit of work over database.
func NewFailingExecUoW(database *sql.DB, failOn int32, err error) *FailingExecUoW {
	return &FailingExecUoW{Inner: db.NewSQLiteUnitOfWork(database), FailOn: failOn, Err: err}
}

// Execs returns how many ExecContext calls were attempted.
func (u *FailingExecUoW) Execs() int32 {
	return u.execs.Load()
}

func (u *FailingExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return u.Inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingExec{DBTX: tx, owner: u})
	})
}

type failingExec struct {
	db.DBTX
	owner *FailingExecUoW
}

func (f *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.owner.execs.Add(1) == f.owner.FailOn {
		return nil, f.owner.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
