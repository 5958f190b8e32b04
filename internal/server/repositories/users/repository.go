package users

import (
	"context"

	"github.com/avoronov/periodvault/internal/server/models"
)

// Repository stores user profile records.
type Repository interface {
	// Create inserts a new user. Returns common.ErrorAlreadyExists when the
	// username is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns a user by login name, common.ErrorNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByID returns a user by id, common.ErrorNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// ClaimEncryptionKey atomically sets the user's encryption key if and only
	// if none is stored yet, and returns the authoritative stored key. When a
	// key is already present the offered key is discarded and the stored one
	// is returned, so concurrent first-use claims converge on one winner.
	ClaimEncryptionKey(ctx context.Context, userID string, key []byte) ([]byte, error)
}
