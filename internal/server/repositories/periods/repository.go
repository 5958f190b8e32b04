// Package periods provides server-side storage for period documents.
//
// The server treats account entries as opaque documents apart from their ids:
// membership operations are keyed by account id, never by value equality, so
// non-deterministic ciphertext can't turn a removal into a silent no-op.
package periods

import (
	"context"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/server/models"
)

// Repository stores period documents.
type Repository interface {
	// Create inserts a new period document.
	Create(ctx context.Context, period *models.Period) (*models.Period, error)

	// ListByUser returns the user's periods ordered by created_at descending.
	// A limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Period, error)

	// GetByID returns a period by id, common.ErrorNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.Period, error)

	// UnionAccount appends the account to the period's list unless an account
	// with the same id is already present (no-op in that case).
	UnionAccount(ctx context.Context, periodID string, account api.AccountDoc) (*models.Period, error)

	// RemoveAccount removes the account with the given id. Removing an absent
	// id is a no-op, which makes the operation idempotent.
	RemoveAccount(ctx context.Context, periodID string, accountID string) (*models.Period, error)

	// ReplaceAccounts overwrites the period's entire account list.
	ReplaceAccounts(ctx context.Context, periodID string, accounts []api.AccountDoc) (*models.Period, error)

	// Delete removes the period document entirely.
	Delete(ctx context.Context, id string) error
}
