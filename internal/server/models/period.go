package models

import (
	"time"

	"github.com/avoronov/periodvault/internal/api"
)

// Period is a period document row. Accounts is the stored JSONB array; the
// server treats its elements as opaque apart from their ids (name/amount are
// ciphertext the server cannot read).
type Period struct {
	ID            string
	UserID        string
	Label         string
	Accounts      []api.AccountDoc
	SchemaVersion int
	CreatedAt     time.Time
}

// Doc converts the row into its wire document form.
func (p *Period) Doc() api.PeriodDoc {
	return api.PeriodDoc{
		ID:            p.ID,
		Label:         p.Label,
		Accounts:      p.Accounts,
		CreatedAt:     p.CreatedAt,
		UserID:        p.UserID,
		SchemaVersion: p.SchemaVersion,
	}
}
