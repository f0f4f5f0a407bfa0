package slots

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE slots (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return db
}

// contract runs the behaviour every Repository must share.
func contract(t *testing.T, r Repository) {
	ctx := context.Background()

	v, err := r.Get(ctx, "absent")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))
	v, err = r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)

	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))
	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Equal(t, []byte{0xBB, 0xCC}, m["b"])

	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, r.Delete(ctx, "k"))
	v, err = r.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestSQLiteRepository_Contract(t *testing.T) {
	contract(t, NewSQLiteRepository(setupDB(t)))
}

func TestMemoryRepository_Contract(t *testing.T) {
	contract(t, NewMemoryRepository())
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, r.Set(ctx, "k", in))
	in[0] = 'x'

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(v))
}

func TestMemoryRepository_InjectedError(t *testing.T) {
	r := NewMemoryRepository()
	r.Err = &common.PersistenceError{Kind: common.PersistenceWrite, Op: "set"}

	err := r.Set(context.Background(), "k", nil)
	require.ErrorIs(t, err, common.ErrPersistence)
}

func TestSQLiteRepository_ClosedDB_IsPersistenceError(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.Get(context.Background(), "k")
	require.ErrorIs(t, err, common.ErrPersistence)

	err = r.Set(context.Background(), "k", []byte("v"))
	var pe *common.PersistenceError
	require.ErrorAs(t, err, &pe)
}

func TestSQLiteRepository_Batch(t *testing.T) {
	ctx := context.Background()
	r := NewSQLiteRepository(setupDB(t))

	err := r.Batch(ctx, func(ctx context.Context, repo Repository) error {
		require.NoError(t, repo.Set(ctx, "a", []byte("1")))
		return repo.Set(ctx, "b", []byte("2"))
	})
	require.NoError(t, err)
	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)

	boom := errors.New("boom")
	err = r.Batch(ctx, func(ctx context.Context, repo Repository) error {
		require.NoError(t, repo.Set(ctx, "c", []byte("3")))
		return boom
	})
	require.ErrorIs(t, err, boom)
	v, err := r.Get(ctx, "c")
	require.NoError(t, err)
	assert.Nil(t, v, "rolled back write must not be visible")
}
