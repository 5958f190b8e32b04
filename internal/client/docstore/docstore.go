// Package docstore is the client-side adapter to the remote document store.
// It speaks the server's HTTP API and maps transport failures and HTTP error
// statuses to the shared sentinel errors, so callers can use errors.Is
// without knowing about HTTP.
package docstore

import (
	"context"

	"github.com/avoronov/periodvault/internal/api"
)

// Session identifies an authenticated user against the remote store.
type Session struct {
	UserID      string
	AccessToken string
}

// DocumentStore is the remote persistence surface the client programs
// against. The store holds documents verbatim; all domain interpretation
// (encryption, baselines, percentages) happens on the caller's side.
type DocumentStore interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*Session, error)
	Ping(ctx context.Context) error

	// GetKey returns the user's encryption key, or common.ErrorNotFound
	// if none has been provisioned yet.
	GetKey(ctx context.Context) ([]byte, error)

	// ClaimKey offers a key for the create-if-absent claim and returns the
	// authoritative stored key, which may differ from the offered one if
	// another session claimed first.
	ClaimKey(ctx context.Context, key []byte) ([]byte, error)

	CreatePeriod(ctx context.Context, label string, accounts []api.AccountDoc) (*api.PeriodDoc, error)
	ListPeriods(ctx context.Context, limit int) ([]api.PeriodDoc, error)
	GetPeriod(ctx context.Context, id string) (*api.PeriodDoc, error)
	DeletePeriod(ctx context.Context, id string) error

	UnionAccount(ctx context.Context, periodID string, account api.AccountDoc) (*api.PeriodDoc, error)
	RemoveAccount(ctx context.Context, periodID, accountID string) (*api.PeriodDoc, error)
	ReplaceAccounts(ctx context.Context, periodID string, accounts []api.AccountDoc) (*api.PeriodDoc, error)

	// Session returns the current session, or nil when signed out.
	Session() *Session

	// ClearSession forgets the current session.
	ClearSession()
}
