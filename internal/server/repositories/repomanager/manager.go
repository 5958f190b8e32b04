// Package repomanager wires repository implementations to a database handle
// and exposes a schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/avoronov/periodvault/internal/server/repositories/periods"
	"github.com/avoronov/periodvault/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to one database.
type RepositoryManager interface {
	Conn() *sql.DB
	Users() users.Repository
	Periods() periods.Repository
	RunMigrations(ctx context.Context) error
}
