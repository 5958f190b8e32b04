package periods

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/dbx"
	"github.com/avoronov/periodvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, period *models.Period) (*models.Period, error) {

	accounts, err := json.Marshal(period.Accounts)
	if err != nil {
		return nil, fmt.Errorf("accounts marshal error: %w", err)
	}

	query :=
		`INSERT INTO periods (id, user_id, label, accounts, schema_version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err = r.db.ExecContext(ctx, query,
		period.ID, period.UserID, period.Label, accounts, period.SchemaVersion, period.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return period, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Period, error) {
	query :=
		`SELECT id, user_id, label, accounts, schema_version, created_at FROM periods
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Period
	for rows.Next() {
		p, err := scanPeriod(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Period, error) {
	query :=
		`SELECT id, user_id, label, accounts, schema_version, created_at FROM periods
		 WHERE id = $1
		 `

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanPeriod(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return p, nil
}

// UnionAccount is a single atomic statement: the appended element is dropped
// when an element with the same id already exists in the array.
func (r *PostgresRepository) UnionAccount(ctx context.Context, periodID string, account api.AccountDoc) (*models.Period, error) {

	doc, err := json.Marshal(account)
	if err != nil {
		return nil, fmt.Errorf("account marshal error: %w", err)
	}

	query :=
		`UPDATE periods SET accounts = accounts || $2::jsonb
		 WHERE id = $1
		   AND NOT EXISTS (
		       SELECT 1 FROM jsonb_array_elements(accounts) AS e
		       WHERE e->>'id' = $3
		   )
		 `

	if _, err := r.db.ExecContext(ctx, query, periodID, doc, account.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return r.GetByID(ctx, periodID)
}

func (r *PostgresRepository) RemoveAccount(ctx context.Context, periodID string, accountID string) (*models.Period, error) {
	query :=
		`UPDATE periods SET accounts = COALESCE(
		     (SELECT jsonb_agg(e) FROM jsonb_array_elements(accounts) AS e
		      WHERE e->>'id' <> $2),
		     '[]'::jsonb)
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, periodID, accountID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return r.GetByID(ctx, periodID)
}

func (r *PostgresRepository) ReplaceAccounts(ctx context.Context, periodID string, accounts []api.AccountDoc) (*models.Period, error) {

	doc, err := json.Marshal(accounts)
	if err != nil {
		return nil, fmt.Errorf("accounts marshal error: %w", err)
	}

	query := `UPDATE periods SET accounts = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, periodID, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return r.GetByID(ctx, periodID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanPeriod(scan func(dest ...any) error) (*models.Period, error) {
	p := &models.Period{}
	var accounts []byte

	if err := scan(&p.ID, &p.UserID, &p.Label, &accounts, &p.SchemaVersion, &p.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(accounts, &p.Accounts); err != nil {
		return nil, fmt.Errorf("accounts unmarshal error: %w", err)
	}
	if p.Accounts == nil {
		p.Accounts = []api.AccountDoc{}
	}
	return p, nil
}
