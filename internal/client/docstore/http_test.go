package docstore

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/logging"
	"github.com/avoronov/periodvault/internal/server/httpapi"
	"github.com/avoronov/periodvault/internal/server/repositories/periods"
	"github.com/avoronov/periodvault/internal/server/repositories/users"
)

func newTestStore(t *testing.T) *HTTPStore {
	t.Helper()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httpapi.NewServer("", logger, users.NewInMemoryRepository(), periods.NewInMemoryRepository(), "test-secret", time.Hour)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return NewHTTPStore(ts.URL, 5*time.Second)
}

func signUp(t *testing.T, store *HTTPStore, username string) *Session {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Register(ctx, username, "password1"))
	session, err := store.Login(ctx, username, "password1")
	require.NoError(t, err)
	return session
}

func TestHTTPStoreRegisterAndLogin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := signUp(t, store, "alice")
	assert.NotEmpty(t, session.UserID)
	assert.NotEmpty(t, session.AccessToken)

	err := store.Register(ctx, "alice", "password1")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = store.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrorNotAuthenticated)
}

func TestHTTPStoreRequiresSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ListPeriods(ctx, 0)
	assert.ErrorIs(t, err, common.ErrorNotAuthenticated)
}

func TestHTTPStoreKeyClaim(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	signUp(t, store, "alice")

	_, err := store.GetKey(ctx)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	offered := make([]byte, common.KeySize)
	for n := range offered {
		offered[n] = byte(n)
	}
	stored, err := store.ClaimKey(ctx, offered)
	require.NoError(t, err)
	assert.Equal(t, offered, stored)

	// A second claim loses: the first stored key wins.
	other := make([]byte, common.KeySize)
	stored, err = store.ClaimKey(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, offered, stored)

	got, err := store.GetKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, offered, got)
}

func TestHTTPStorePeriodLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	signUp(t, store, "alice")

	created, err := store.CreatePeriod(ctx, "January", nil)
	require.NoError(t, err)
	assert.Equal(t, "January", created.Label)
	assert.Equal(t, api.SchemaVersionPeriods, created.SchemaVersion)
	assert.Empty(t, created.Accounts)

	acc := api.AccountDoc{ID: "acc-1", Name: "ciphertext-name", Amount: "ciphertext-amount"}
	updated, err := store.UnionAccount(ctx, created.ID, acc)
	require.NoError(t, err)
	require.Len(t, updated.Accounts, 1)

	// Union with the same id is a no-op.
	updated, err = store.UnionAccount(ctx, created.ID, acc)
	require.NoError(t, err)
	require.Len(t, updated.Accounts, 1)

	second, err := store.CreatePeriod(ctx, "February", updated.Accounts)
	require.NoError(t, err)

	listed, err := store.ListPeriods(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, created.ID, listed[1].ID)

	listed, err = store.ListPeriods(ctx, 1)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)

	updated, err = store.RemoveAccount(ctx, created.ID, "acc-1")
	require.NoError(t, err)
	assert.Empty(t, updated.Accounts)

	replaced, err := store.ReplaceAccounts(ctx, second.ID, []api.AccountDoc{
		{ID: "acc-2", Name: "n", Amount: "a"},
	})
	require.NoError(t, err)
	require.Len(t, replaced.Accounts, 1)
	assert.Equal(t, "acc-2", replaced.Accounts[0].ID)

	require.NoError(t, store.DeletePeriod(ctx, created.ID))
	_, err = store.GetPeriod(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestHTTPStoreClearSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	signUp(t, store, "alice")

	store.ClearSession()
	assert.Nil(t, store.Session())

	_, err := store.ListPeriods(ctx, 0)
	assert.ErrorIs(t, err, common.ErrorNotAuthenticated)
}
