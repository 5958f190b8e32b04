// Package api defines the wire representation of the document-store HTTP API
// shared by the server and the client adapter: document shapes, request and
// response bodies, and the document schema versioning rules.
package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/avoronov/periodvault/internal/common"
)

// Document schema versions.
//
// Version 1 is the legacy "months" era: the label lived in a "month" field,
// account name/amount were stored in plaintext (amount as a JSON number), and
// accounts carried no baseline data. Version 2 is the current "periods"
// shape: name/amount are ciphertext strings and accounts carry percentage,
// baseValue and baseSet.
const (
	SchemaVersionLegacyMonths = 1
	SchemaVersionPeriods      = 2
)

// AccountDoc is the stored form of an account inside a period document.
// In v2 documents Name and Amount are opaque ciphertext strings; in legacy v1
// documents they are plaintext (Amount a JSON number, normalized to its
// decimal string form on decode).
type AccountDoc struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Amount     string   `json:"amount"`
	Percentage *float64 `json:"percentage"`
	BaseValue  float64  `json:"baseValue"`
	BaseSet    bool     `json:"baseSet"`
}

// accountDocWire mirrors AccountDoc but keeps Amount raw so both the v2
// string form and the legacy v1 number form can be decoded.
type accountDocWire struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     json.RawMessage `json:"amount"`
	Percentage *float64        `json:"percentage"`
	BaseValue  float64         `json:"baseValue"`
	BaseSet    bool            `json:"baseSet"`
}

func (a *AccountDoc) UnmarshalJSON(b []byte) error {
	var w accountDocWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	a.ID = w.ID
	a.Name = w.Name
	a.Percentage = w.Percentage
	a.BaseValue = w.BaseValue
	a.BaseSet = w.BaseSet

	if len(w.Amount) == 0 || string(w.Amount) == "null" {
		a.Amount = ""
		return nil
	}
	if w.Amount[0] == '"' {
		return json.Unmarshal(w.Amount, &a.Amount)
	}

	// Legacy numeric amount: normalize to its decimal string form.
	var f float64
	if err := json.Unmarshal(w.Amount, &f); err != nil {
		return err
	}
	a.Amount = strconv.FormatFloat(f, 'f', -1, 64)
	return nil
}

// PeriodDoc is the stored form of a period document. Label carries the
// period name ("month" name for legacy v1 documents).
type PeriodDoc struct {
	ID            string       `json:"id"`
	Label         string       `json:"period"`
	Accounts      []AccountDoc `json:"accounts"`
	CreatedAt     time.Time    `json:"createdAt"`
	UserID        string       `json:"userId"`
	SchemaVersion int          `json:"schemaVersion"`
}

// Validate checks that a period document has a known schema version and
// structurally sound accounts. It does not inspect ciphertext.
func (p *PeriodDoc) Validate() error {
	if p.SchemaVersion != SchemaVersionLegacyMonths && p.SchemaVersion != SchemaVersionPeriods {
		return fmt.Errorf("%w: unknown schema version %d", common.ErrorValidation, p.SchemaVersion)
	}
	seen := make(map[string]struct{}, len(p.Accounts))
	for _, a := range p.Accounts {
		if a.ID == "" {
			return fmt.Errorf("%w: account without id", common.ErrorValidation)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: duplicate account id %s", common.ErrorValidation, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}
