package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/logging"
	"github.com/avoronov/periodvault/internal/server/repositories/periods"
	"github.com/avoronov/periodvault/internal/server/repositories/users"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(":0", logger, users.NewInMemoryRepository(), periods.NewInMemoryRepository(), "test-secret", time.Hour)
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echoContentType, "application/json")
	if token != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func registerAndLogin(t *testing.T, s *Server, username string) (userID, token string) {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Username: username, Password: "pass123"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Username: username, Password: "pass123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.UserID, resp.AccessToken
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Username: "alice", Password: "x"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Username: "alice", Password: "y"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	registerAndLogin(t, s, "alice")

	rec := doJSON(t, s, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired_RejectsMissingAndBadTokens(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/periods", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/periods", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimKey_FirstWriterWins(t *testing.T) {
	s := newTestServer(t)
	_, token := registerAndLogin(t, s, "alice")

	// no key yet
	rec := doJSON(t, s, http.MethodGet, "/api/users/me/key", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var kr api.KeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kr))
	assert.Empty(t, kr.EncryptionKey)

	first := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, common.KeySize))
	second := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, common.KeySize))

	rec = doJSON(t, s, http.MethodPost, "/api/users/me/key/claim", token, api.ClaimKeyRequest{EncryptionKey: first})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kr))
	assert.Equal(t, first, kr.EncryptionKey)

	// a second claim must return the first key, not overwrite it
	rec = doJSON(t, s, http.MethodPost, "/api/users/me/key/claim", token, api.ClaimKeyRequest{EncryptionKey: second})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kr))
	assert.Equal(t, first, kr.EncryptionKey)
}

func TestClaimKey_RejectsBadKey(t *testing.T) {
	s := newTestServer(t)
	_, token := registerAndLogin(t, s, "alice")

	rec := doJSON(t, s, http.MethodPost, "/api/users/me/key/claim", token, api.ClaimKeyRequest{EncryptionKey: "dG9vLXNob3J0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func createPeriod(t *testing.T, s *Server, token, label string, accounts []api.AccountDoc) api.PeriodDoc {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/periods", token, api.CreatePeriodRequest{Label: label, Accounts: accounts})
	require.Equal(t, http.StatusCreated, rec.Code)
	var doc api.PeriodDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

func TestPeriodLifecycle(t *testing.T) {
	s := newTestServer(t)
	userID, token := registerAndLogin(t, s, "alice")

	doc := createPeriod(t, s, token, "Jan", nil)
	assert.Equal(t, "Jan", doc.Label)
	assert.Equal(t, userID, doc.UserID)
	assert.Equal(t, api.SchemaVersionPeriods, doc.SchemaVersion)
	assert.Empty(t, doc.Accounts)

	// union an account, then a duplicate id: list stays at one element
	acc := api.AccountDoc{ID: "a1", Name: "ct-name", Amount: "ct-amount", BaseValue: 0}
	rec := doJSON(t, s, http.MethodPost, "/api/periods/"+doc.ID+"/accounts/union", token, api.UnionAccountRequest{Account: acc})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/periods/"+doc.ID+"/accounts/union", token, api.UnionAccountRequest{Account: acc})
	require.Equal(t, http.StatusOK, rec.Code)
	var got api.PeriodDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Accounts, 1)

	// remove twice: idempotent
	rec = doJSON(t, s, http.MethodPost, "/api/periods/"+doc.ID+"/accounts/remove", token, api.RemoveAccountRequest{AccountID: "a1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/api/periods/"+doc.ID+"/accounts/remove", token, api.RemoveAccountRequest{AccountID: "a1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Accounts)

	// delete
	rec = doJSON(t, s, http.MethodDelete, "/api/periods/"+doc.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/periods/"+doc.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPeriods_NewestFirstWithLimit(t *testing.T) {
	s := newTestServer(t)
	_, token := registerAndLogin(t, s, "alice")

	createPeriod(t, s, token, "Jan", nil)
	createPeriod(t, s, token, "Feb", nil)

	rec := doJSON(t, s, http.MethodGet, "/api/periods?limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.PeriodListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Periods, 1)
	assert.Equal(t, "Feb", resp.Periods[0].Label)
}

func TestPeriodOwnership(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := registerAndLogin(t, s, "alice")
	_, bobToken := registerAndLogin(t, s, "bob")

	doc := createPeriod(t, s, aliceToken, "Jan", nil)

	rec := doJSON(t, s, http.MethodGet, "/api/periods/"+doc.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/periods/"+doc.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// bob's listing must not contain alice's period
	rec = doJSON(t, s, http.MethodGet, "/api/periods", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.PeriodListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Periods)
}

func TestReplaceAccounts_FullOverwrite(t *testing.T) {
	s := newTestServer(t)
	_, token := registerAndLogin(t, s, "alice")

	doc := createPeriod(t, s, token, "Jan", []api.AccountDoc{{ID: "a1", Amount: "ct-old"}})

	next := []api.AccountDoc{{ID: "a1", Amount: "ct-new", BaseValue: 100, BaseSet: true}}
	rec := doJSON(t, s, http.MethodPut, "/api/periods/"+doc.ID+"/accounts", token, api.ReplaceAccountsRequest{Accounts: next})
	require.Equal(t, http.StatusOK, rec.Code)

	var got api.PeriodDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Accounts, 1)
	assert.Equal(t, "ct-new", got.Accounts[0].Amount)
	assert.True(t, got.Accounts[0].BaseSet)
}
