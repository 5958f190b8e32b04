package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/avoronov/periodvault/internal/common"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQLiteRepository(db)
}

func TestCacheSetGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "periods_u1", `[{"id":"p-1"}]`))

	got, err := repo.Get(ctx, "periods_u1")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p-1"}]`, got)
}

func TestCacheSetOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", "v1"))
	require.NoError(t, repo.Set(ctx, "k", "v2"))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestCacheGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCacheDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", "v"))
	require.NoError(t, repo.Delete(ctx, "k"))

	_, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// Deleting an absent key is a no-op.
	require.NoError(t, repo.Delete(ctx, "k"))
}
