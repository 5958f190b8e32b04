package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/client/models"
	"github.com/avoronov/periodvault/internal/client/repositories/cache"
	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/dbx"
)

// StateStore is the session's view of the user's periods, backed by the
// local cache. Each signed-in session owns one StateStore; nothing about it
// is global, and its cache keys are scoped by user id so switching users on
// the same machine cannot leak data between them.
//
// The remote store is consulted only on a cold start and when a period is
// selected that the session has not seen yet. A cached empty list counts as
// a cold start: it is indistinguishable from never having fetched, so it is
// refetched rather than trusted. Everything else is served from memory, and
// every change is written through to the cache in one transaction. Cached
// snapshots hold the encrypted documents, never plaintext.
type StateStore struct {
	ledger LedgerService
	db     *sql.DB
	cache  cache.Repository
	userID string
	key    []byte

	docs       []api.PeriodDoc // newest first
	loaded     bool
	selectedID string
}

// NewStateStore constructs the state for one signed-in session over the
// local cache database.
func NewStateStore(ledger LedgerService, db *sql.DB, userID string, key []byte) *StateStore {
	return &StateStore{
		ledger: ledger,
		db:     db,
		cache:  cache.NewSQLiteRepository(db),
		userID: userID,
		key:    key,
	}
}

func (s *StateStore) periodsKey() string {
	return "periods_" + s.userID
}

func (s *StateStore) selectedKey() string {
	return "selectedPeriod_" + s.userID
}

// ensureLoaded populates memory from the cache, falling back to the remote
// store when the cache has nothing usable.
func (s *StateStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	if raw, err := s.cache.Get(ctx, s.periodsKey()); err == nil {
		var docs []api.PeriodDoc
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			return fmt.Errorf("error decoding cached periods: %w", err)
		}
		if len(docs) > 0 {
			s.docs = docs
			return s.finishLoad(ctx)
		}
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	docs, err := s.ledger.ListPeriods(ctx, 0)
	if err != nil {
		return fmt.Errorf("error fetching periods: %w", err)
	}
	s.docs = docs
	if err := s.finishLoad(ctx); err != nil {
		return err
	}
	return s.persistState(ctx)
}

// finishLoad restores the persisted selection; with none, the newest period
// becomes selected.
func (s *StateStore) finishLoad(ctx context.Context) error {
	s.loaded = true
	s.loadSelected(ctx)
	if s.selectedID == "" && len(s.docs) > 0 {
		s.selectedID = s.docs[0].ID
		return s.persistState(ctx)
	}
	return nil
}

func (s *StateStore) loadSelected(ctx context.Context) {
	raw, err := s.cache.Get(ctx, s.selectedKey())
	if err != nil {
		return
	}
	var id string
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return
	}
	s.selectedID = id
}

// persistState writes the period snapshot and the selection to the cache in
// a single transaction, so a crash between the two cannot leave them
// disagreeing.
func (s *StateStore) persistState(ctx context.Context) error {
	docs := s.docs
	if docs == nil {
		docs = []api.PeriodDoc{}
	}
	periodsJSON, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("error encoding periods: %w", err)
	}
	selectedJSON, err := json.Marshal(s.selectedID)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := cache.NewSQLiteRepository(tx)
		if err := r.Set(ctx, s.periodsKey(), string(periodsJSON)); err != nil {
			return err
		}
		return r.Set(ctx, s.selectedKey(), string(selectedJSON))
	})
}

func (s *StateStore) decryptAll() ([]models.Period, error) {
	result := make([]models.Period, len(s.docs))
	for n := range s.docs {
		p, err := models.DecryptPeriod(&s.docs[n], s.key)
		if err != nil {
			return nil, err
		}
		result[n] = *p
	}
	return result, nil
}

// applyDoc replaces the in-memory copy of doc, or appends it when the
// session has not seen the period yet. Appending keeps the newest-first
// order: a period fetched on selection is one the listing would have placed
// behind the working set.
func (s *StateStore) applyDoc(doc *api.PeriodDoc) {
	for n := range s.docs {
		if s.docs[n].ID == doc.ID {
			s.docs[n] = *doc
			return
		}
	}
	s.docs = append(s.docs, *doc)
}

// FetchAllPeriods returns all periods, newest first. The remote store is hit
// only when neither memory nor the cache has them.
func (s *StateStore) FetchAllPeriods(ctx context.Context) ([]models.Period, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.decryptAll()
}

// SelectPeriod makes the period current. A period the session has not seen
// yet is fetched from the remote store and added to the working set.
func (s *StateStore) SelectPeriod(ctx context.Context, id string) (*models.Period, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	found := false
	for n := range s.docs {
		if s.docs[n].ID == id {
			found = true
			break
		}
	}
	if !found {
		doc, err := s.ledger.GetPeriod(ctx, id)
		if err != nil {
			return nil, err
		}
		s.applyDoc(doc)
	}

	s.selectedID = id
	if err := s.persistState(ctx); err != nil {
		return nil, err
	}
	return s.period(id)
}

// Selected returns the currently selected period, or common.ErrorNotFound
// when nothing is selected.
func (s *StateStore) Selected(ctx context.Context) (*models.Period, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.selectedID == "" {
		return nil, fmt.Errorf("%w: no period selected", common.ErrorNotFound)
	}
	return s.period(s.selectedID)
}

func (s *StateStore) period(id string) (*models.Period, error) {
	for n := range s.docs {
		if s.docs[n].ID == id {
			return models.DecryptPeriod(&s.docs[n], s.key)
		}
	}
	return nil, fmt.Errorf("%w: period %s", common.ErrorNotFound, id)
}

// CreatePeriod creates a period (optionally copied forward from an earlier
// one), selects it, and prepends it to the working set.
func (s *StateStore) CreatePeriod(ctx context.Context, label, copyFromID string) (*models.Period, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	doc, err := s.ledger.CreatePeriod(ctx, label, copyFromID, s.key)
	if err != nil {
		return nil, err
	}

	s.docs = append([]api.PeriodDoc{*doc}, s.docs...)
	s.selectedID = doc.ID
	if err := s.persistState(ctx); err != nil {
		return nil, err
	}
	return s.period(doc.ID)
}

func (s *StateStore) AddAccount(ctx context.Context, periodID, name string, amount float64) (*models.Period, error) {
	return s.mutate(ctx, func(ctx context.Context) (*api.PeriodDoc, error) {
		return s.ledger.AddAccount(ctx, periodID, name, amount, s.key)
	})
}

func (s *StateStore) RemoveAccount(ctx context.Context, periodID, accountID string) (*models.Period, error) {
	return s.mutate(ctx, func(ctx context.Context) (*api.PeriodDoc, error) {
		return s.ledger.RemoveAccount(ctx, periodID, accountID)
	})
}

func (s *StateStore) UpdateAccountAmount(ctx context.Context, periodID, accountID string, amount float64) (*models.Period, error) {
	return s.mutate(ctx, func(ctx context.Context) (*api.PeriodDoc, error) {
		return s.ledger.UpdateAccountAmount(ctx, periodID, accountID, amount, s.key)
	})
}

func (s *StateStore) mutate(ctx context.Context, op func(ctx context.Context) (*api.PeriodDoc, error)) (*models.Period, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	doc, err := op(ctx)
	if err != nil {
		return nil, err
	}

	s.applyDoc(doc)
	if err := s.persistState(ctx); err != nil {
		return nil, err
	}
	return s.period(doc.ID)
}

// DeletePeriod removes a period everywhere: remote store, memory, cache.
// The selection is cleared if it pointed at the deleted period.
func (s *StateStore) DeletePeriod(ctx context.Context, id string) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	if err := s.ledger.DeletePeriod(ctx, id); err != nil {
		return err
	}

	for n := range s.docs {
		if s.docs[n].ID == id {
			s.docs = append(s.docs[:n:n], s.docs[n+1:]...)
			break
		}
	}
	if s.selectedID == id {
		s.selectedID = ""
	}
	return s.persistState(ctx)
}

// ClearCache wipes the session's cached state, both persisted and in-memory.
// Called on sign-out so the next user on this machine starts cold.
func (s *StateStore) ClearCache(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := cache.NewSQLiteRepository(tx)
		if err := r.Delete(ctx, s.periodsKey()); err != nil {
			return err
		}
		return r.Delete(ctx, s.selectedKey())
	})
	if err != nil {
		return err
	}
	s.docs = nil
	s.loaded = false
	s.selectedID = ""
	return nil
}
