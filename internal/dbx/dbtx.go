// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run functions inside a transaction, and the mapping from
// SQLite failures to persistence error kinds.
package dbx

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	sqlite3 "modernc.org/sqlite/lib"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM slots")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

type coder interface {
	Code() int
}

// Classify wraps a driver error into a common.PersistenceError. def is the
// kind used when the SQLite result code says nothing more specific.
func Classify(op string, def common.PersistenceKind, err error) error {
	if err == nil {
		return nil
	}

	kind := def
	var c coder
	if errors.As(err, &c) {
		switch c.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			kind = common.PersistenceLocked
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			kind = common.PersistenceCorrupt
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM:
			kind = common.PersistenceUnavailable
		case sqlite3.SQLITE_FULL, sqlite3.SQLITE_IOERR:
			kind = common.PersistenceWrite
		}
	} else if errors.Is(err, sql.ErrConnDone) {
		kind = common.PersistenceUnavailable
	}

	return &common.PersistenceError{Kind: kind, Op: op, Err: err}
}
