// Package cache persists the client's local state snapshots in a SQLite
// key/value table, so a session can start from cached data instead of
// refetching everything from the server.
package cache

import "context"

// Repository is a string key/value store. Values are JSON snapshots.
type Repository interface {
	// Get returns the value for key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	// Delete removes key; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
