package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avoronov/periodvault/internal/client/docstore"
	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/cryptox"
)

// ResolveEncryptionKey returns the user's encryption key, provisioning one if
// the user has none yet. Provisioning is a create-if-absent claim on the
// server: when two sessions race, both converge on whichever key was stored
// first, so fields encrypted by one session stay readable by the other.
func ResolveEncryptionKey(ctx context.Context, store docstore.DocumentStore) ([]byte, error) {
	key, err := store.GetKey(ctx)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error retrieving encryption key: %w", err)
	}

	candidate := cryptox.GenerateKey()

	stored, err := store.ClaimKey(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("error claiming encryption key: %w", err)
	}
	return stored, nil
}
