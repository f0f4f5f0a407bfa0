package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:dbx_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY, v TEXT);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('ok')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('fail')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)

	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('panic')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}

type codeErr int

func (c codeErr) Error() string { return "sqlite code" }
func (c codeErr) Code() int     { return int(c) }

func TestClassify(t *testing.T) {
	require.NoError(t, Classify("op", common.PersistenceWrite, nil))

	tests := []struct {
		name string
		err  error
		want common.PersistenceKind
	}{
		{"plain error keeps default", errors.New("x"), common.PersistenceWrite},
		{"busy", codeErr(5), common.PersistenceLocked},
		{"extended busy code", codeErr(5 | 2<<8), common.PersistenceLocked},
		{"corrupt", codeErr(11), common.PersistenceCorrupt},
		{"not a db", codeErr(26), common.PersistenceCorrupt},
		{"readonly", codeErr(8), common.PersistenceUnavailable},
		{"full", codeErr(13), common.PersistenceWrite},
		{"closed connection", sql.ErrConnDone, common.PersistenceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("save", common.PersistenceWrite, tt.err)
			var pe *common.PersistenceError
			require.ErrorAs(t, err, &pe)
			require.Equal(t, tt.want, pe.Kind)
			require.Equal(t, "save", pe.Op)
			require.ErrorIs(t, err, common.ErrPersistence)
			require.ErrorIs(t, err, tt.err)
		})
	}
}
