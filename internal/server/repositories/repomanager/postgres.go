package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/avoronov/periodvault/internal/server/migrations"
	"github.com/avoronov/periodvault/internal/server/repositories/periods"
	"github.com/avoronov/periodvault/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories over a
// single *sql.DB opened with the pgx stdlib driver.
type PostgresRepositoryManager struct {
	db      *sql.DB
	users   users.Repository
	periods periods.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) Periods() periods.Repository {
	return m.periods
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, m.db, ".")
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:      db,
		users:   users.NewPostgresRepository(db),
		periods: periods.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
