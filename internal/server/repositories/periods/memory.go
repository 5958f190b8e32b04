package periods

import (
	"context"
	"sort"
	"sync"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used in tests.
type InMemoryRepository struct {
	mu      sync.Mutex
	periods map[string]*models.Period
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{periods: make(map[string]*models.Period)}
}

func (r *InMemoryRepository) Create(_ context.Context, period *models.Period) (*models.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.periods[period.ID] = clonePeriod(period)
	return period, nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]models.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []models.Period
	for _, p := range r.periods {
		if p.UserID == userID {
			result = append(result, *clonePeriod(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*models.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.periods[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clonePeriod(p), nil
}

func (r *InMemoryRepository) UnionAccount(_ context.Context, periodID string, account api.AccountDoc) (*models.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.periods[periodID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for _, a := range p.Accounts {
		if a.ID == account.ID {
			return clonePeriod(p), nil
		}
	}
	p.Accounts = append(p.Accounts, account)
	return clonePeriod(p), nil
}

func (r *InMemoryRepository) RemoveAccount(_ context.Context, periodID string, accountID string) (*models.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.periods[periodID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	kept := p.Accounts[:0]
	for _, a := range p.Accounts {
		if a.ID != accountID {
			kept = append(kept, a)
		}
	}
	p.Accounts = kept
	return clonePeriod(p), nil
}

func (r *InMemoryRepository) ReplaceAccounts(_ context.Context, periodID string, accounts []api.AccountDoc) (*models.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.periods[periodID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.Accounts = append([]api.AccountDoc(nil), accounts...)
	return clonePeriod(p), nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.periods[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.periods, id)
	return nil
}

func clonePeriod(p *models.Period) *models.Period {
	c := *p
	c.Accounts = append([]api.AccountDoc(nil), p.Accounts...)
	return &c
}
