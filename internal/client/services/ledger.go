// Package services contains application services for the PeriodVault client:
// authentication, encryption key resolution, the period ledger, and the
// cache-backed session state store.
//
// All domain interpretation lives here. The server stores opaque documents;
// the ledger encrypts on the way out, decrypts on the way in, and derives
// baselines and percentage changes locally.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/client/docstore"
	"github.com/avoronov/periodvault/internal/client/models"
	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/percent"
)

// LedgerService manages period documents: creation (empty or copied forward
// from an earlier period), account membership, and amount updates with
// percentage-change derivation.
//
// Accounts keep their id when copied forward, so the same account can be
// followed across periods. Copy-forward is the only operation that grants an
// account a baseline: the copied amount becomes the base value the next
// percentage is computed against. Accounts added directly to a period have
// no baseline and never show a percentage until they survive a copy.
type LedgerService interface {
	CreatePeriod(ctx context.Context, label string, copyFromID string, key []byte) (*api.PeriodDoc, error)
	ListPeriods(ctx context.Context, limit int) ([]api.PeriodDoc, error)
	GetPeriod(ctx context.Context, id string) (*api.PeriodDoc, error)
	DeletePeriod(ctx context.Context, id string) error

	AddAccount(ctx context.Context, periodID, name string, amount float64, key []byte) (*api.PeriodDoc, error)
	RemoveAccount(ctx context.Context, periodID, accountID string) (*api.PeriodDoc, error)
	UpdateAccountAmount(ctx context.Context, periodID, accountID string, amount float64, key []byte) (*api.PeriodDoc, error)
}

type ledgerService struct {
	store docstore.DocumentStore
}

// NewLedgerService constructs a LedgerService bound to the given store.
func NewLedgerService(store docstore.DocumentStore) LedgerService {
	return &ledgerService{store: store}
}

// CreatePeriod creates a new period, carrying the source period's accounts
// forward. With an empty copyFromID the newest existing period is the
// source; the very first period starts with no accounts. Each copied
// account keeps its id and amount, gains the copied amount as its baseline,
// and starts with no percentage.
func (s *ledgerService) CreatePeriod(ctx context.Context, label string, copyFromID string, key []byte) (*api.PeriodDoc, error) {
	if label == "" {
		return nil, fmt.Errorf("%w: period label must not be empty", common.ErrorValidation)
	}

	var sourceDoc *api.PeriodDoc
	if copyFromID == "" {
		newest, err := s.store.ListPeriods(ctx, 1)
		if err != nil {
			return nil, fmt.Errorf("error retrieving newest period: %w", err)
		}
		if len(newest) == 0 {
			return s.store.CreatePeriod(ctx, label, nil)
		}
		sourceDoc = &newest[0]
	} else {
		doc, err := s.store.GetPeriod(ctx, copyFromID)
		if err != nil {
			return nil, fmt.Errorf("error retrieving source period: %w", err)
		}
		sourceDoc = doc
	}

	source, err := models.DecryptPeriod(sourceDoc, key)
	if err != nil {
		return nil, fmt.Errorf("error decrypting source period: %w", err)
	}

	accounts := make([]api.AccountDoc, len(source.Accounts))
	for n, a := range source.Accounts {
		copied := models.Account{
			ID:        a.ID,
			Name:      a.Name,
			Amount:    a.Amount,
			BaseValue: a.Amount,
			BaseSet:   true,
		}
		doc, err := copied.Encrypt(key)
		if err != nil {
			return nil, fmt.Errorf("error encrypting account: %w", err)
		}
		accounts[n] = doc
	}

	return s.store.CreatePeriod(ctx, label, accounts)
}

func (s *ledgerService) ListPeriods(ctx context.Context, limit int) ([]api.PeriodDoc, error) {
	return s.store.ListPeriods(ctx, limit)
}

func (s *ledgerService) GetPeriod(ctx context.Context, id string) (*api.PeriodDoc, error) {
	return s.store.GetPeriod(ctx, id)
}

func (s *ledgerService) DeletePeriod(ctx context.Context, id string) error {
	return s.store.DeletePeriod(ctx, id)
}

// AddAccount adds a new account to a period. The account gets a fresh id and
// no baseline. Membership is keyed by id, so the add cannot clash with an
// existing account even if the name repeats.
func (s *ledgerService) AddAccount(ctx context.Context, periodID, name string, amount float64, key []byte) (*api.PeriodDoc, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: account name must not be empty", common.ErrorValidation)
	}

	account := models.Account{
		ID:     uuid.NewString(),
		Name:   name,
		Amount: amount,
	}
	doc, err := account.Encrypt(key)
	if err != nil {
		return nil, fmt.Errorf("error encrypting account: %w", err)
	}

	return s.store.UnionAccount(ctx, periodID, doc)
}

func (s *ledgerService) RemoveAccount(ctx context.Context, periodID, accountID string) (*api.PeriodDoc, error) {
	return s.store.RemoveAccount(ctx, periodID, accountID)
}

// UpdateAccountAmount sets a new amount for an account and rederives its
// percentage change. The percentage is computed only for accounts with a
// baseline; an account whose baseline is zero keeps a nil percentage, since
// relative change from zero is undefined.
func (s *ledgerService) UpdateAccountAmount(ctx context.Context, periodID, accountID string, amount float64, key []byte) (*api.PeriodDoc, error) {
	periodDoc, err := s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving period: %w", err)
	}

	period, err := models.DecryptPeriod(periodDoc, key)
	if err != nil {
		return nil, fmt.Errorf("error decrypting period: %w", err)
	}

	n := period.FindAccount(accountID)
	if n < 0 {
		return nil, fmt.Errorf("%w: account %s", common.ErrorNotFound, accountID)
	}

	account := &period.Accounts[n]
	account.Amount = amount
	account.Percentage = nil
	if account.BaseSet {
		if change, ok := percent.Change(account.BaseValue, amount); ok {
			account.Percentage = &change
		}
	}

	accounts := make([]api.AccountDoc, len(period.Accounts))
	for i, a := range period.Accounts {
		doc, err := a.Encrypt(key)
		if err != nil {
			return nil, fmt.Errorf("error encrypting account: %w", err)
		}
		accounts[i] = doc
	}

	return s.store.ReplaceAccounts(ctx, periodID, accounts)
}
