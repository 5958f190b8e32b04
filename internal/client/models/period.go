// Package models defines the client-side plaintext view of periods and
// savings accounts, and their conversion to and from the stored document
// shape (encrypting on write, decrypting and migrating legacy documents
// on read).
package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/cryptox"
)

// Account is a decrypted savings account within a period.
//
// Percentage is nil until the account has both a baseline carried over from
// a previous period and at least one amount update; it then holds the
// relative change against that baseline.
type Account struct {
	ID         string
	Name       string
	Amount     float64
	Percentage *float64
	BaseValue  float64
	BaseSet    bool
}

// Period is a decrypted period with its accounts, newest first in listings.
type Period struct {
	ID        string
	Label     string
	Accounts  []Account
	CreatedAt time.Time
}

// FormatAmount renders an amount the way it is stored: the shortest decimal
// string that round-trips through float64.
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseAmount is the inverse of FormatAmount.
func ParseAmount(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// Encrypt converts an account to its stored form, encrypting name and amount
// with the user's key.
func (a *Account) Encrypt(key []byte) (api.AccountDoc, error) {
	name, err := cryptox.EncryptField(a.Name, key)
	if err != nil {
		return api.AccountDoc{}, fmt.Errorf("error encrypting name: %w", err)
	}

	amount, err := cryptox.EncryptField(FormatAmount(a.Amount), key)
	if err != nil {
		return api.AccountDoc{}, fmt.Errorf("error encrypting amount: %w", err)
	}

	return api.AccountDoc{
		ID:         a.ID,
		Name:       name,
		Amount:     amount,
		Percentage: a.Percentage,
		BaseValue:  a.BaseValue,
		BaseSet:    a.BaseSet,
	}, nil
}

// DecryptAccount converts a stored account back to its plaintext form.
// Legacy v1 accounts are stored in plaintext and are parsed directly. A
// migrated account is treated like one carried over from an earlier period:
// its amount becomes its baseline and it has no percentage yet.
func DecryptAccount(doc api.AccountDoc, key []byte, schemaVersion int) (Account, error) {
	a := Account{
		ID:         doc.ID,
		Percentage: doc.Percentage,
		BaseValue:  doc.BaseValue,
		BaseSet:    doc.BaseSet,
	}

	if schemaVersion == api.SchemaVersionLegacyMonths {
		a.Name = doc.Name
		amount, err := ParseAmount(doc.Amount)
		if err != nil {
			return Account{}, fmt.Errorf("error parsing legacy amount: %w", err)
		}
		a.Amount = amount
		a.BaseValue = amount
		a.BaseSet = true
		a.Percentage = nil
		return a, nil
	}

	name, err := cryptox.DecryptField(doc.Name, key)
	if err != nil {
		return Account{}, fmt.Errorf("error decrypting name: %w", err)
	}
	a.Name = name

	plain, err := cryptox.DecryptField(doc.Amount, key)
	if err != nil {
		return Account{}, fmt.Errorf("error decrypting amount: %w", err)
	}
	amount, err := ParseAmount(plain)
	if err != nil {
		return Account{}, fmt.Errorf("error parsing amount: %w", err)
	}
	a.Amount = amount

	return a, nil
}

// Encrypt converts a period to its stored form. The result always carries
// the current schema version, so writing back a migrated legacy period
// upgrades it.
func (p *Period) Encrypt(key []byte) (*api.PeriodDoc, error) {
	accounts := make([]api.AccountDoc, len(p.Accounts))
	for n, a := range p.Accounts {
		doc, err := a.Encrypt(key)
		if err != nil {
			return nil, err
		}
		accounts[n] = doc
	}

	return &api.PeriodDoc{
		ID:            p.ID,
		Label:         p.Label,
		Accounts:      accounts,
		CreatedAt:     p.CreatedAt,
		SchemaVersion: api.SchemaVersionPeriods,
	}, nil
}

// DecryptPeriod converts a stored period document to its plaintext form,
// migrating legacy v1 documents on the fly.
func DecryptPeriod(doc *api.PeriodDoc, key []byte) (*Period, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	p := &Period{
		ID:        doc.ID,
		Label:     doc.Label,
		CreatedAt: doc.CreatedAt,
		Accounts:  make([]Account, len(doc.Accounts)),
	}

	for n, ad := range doc.Accounts {
		a, err := DecryptAccount(ad, key, doc.SchemaVersion)
		if err != nil {
			return nil, err
		}
		p.Accounts[n] = a
	}

	return p, nil
}

// FindAccount returns the index of the account with the given id, or -1.
func (p *Period) FindAccount(id string) int {
	for n, a := range p.Accounts {
		if a.ID == id {
			return n
		}
	}
	return -1
}
