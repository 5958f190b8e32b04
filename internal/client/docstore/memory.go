package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/common"
)

// MemoryStore is an in-memory DocumentStore with the same observable
// semantics as the remote one. Used in tests.
type MemoryStore struct {
	users   map[string]string // username -> password
	userIDs map[string]string // username -> id
	keys    map[string][]byte // userID -> key
	periods map[string][]*api.PeriodDoc
	session *Session
}

var _ DocumentStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]string),
		userIDs: make(map[string]string),
		keys:    make(map[string][]byte),
		periods: make(map[string][]*api.PeriodDoc),
	}
}

func (s *MemoryStore) Session() *Session {
	return s.session
}

func (s *MemoryStore) ClearSession() {
	s.session = nil
}

func (s *MemoryStore) requireSession() (string, error) {
	if s.session == nil {
		return "", common.ErrorNotAuthenticated
	}
	return s.session.UserID, nil
}

func (s *MemoryStore) Register(_ context.Context, username, password string) error {
	if _, ok := s.users[username]; ok {
		return common.ErrorAlreadyExists
	}
	s.users[username] = password
	s.userIDs[username] = uuid.NewString()
	return nil
}

func (s *MemoryStore) Login(_ context.Context, username, password string) (*Session, error) {
	pw, ok := s.users[username]
	if !ok || pw != password {
		return nil, common.ErrorNotAuthenticated
	}
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	s.session = &Session{UserID: s.userIDs[username], AccessToken: token}
	return s.session, nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *MemoryStore) GetKey(_ context.Context) ([]byte, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	key, ok := s.keys[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return key, nil
}

func (s *MemoryStore) ClaimKey(_ context.Context, key []byte) ([]byte, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	if stored, ok := s.keys[userID]; ok {
		return stored, nil
	}
	s.keys[userID] = key
	return key, nil
}

func (s *MemoryStore) CreatePeriod(_ context.Context, label string, accounts []api.AccountDoc) (*api.PeriodDoc, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []api.AccountDoc{}
	}
	doc := &api.PeriodDoc{
		ID:            uuid.NewString(),
		Label:         label,
		Accounts:      accounts,
		CreatedAt:     time.Now().UTC(),
		UserID:        userID,
		SchemaVersion: api.SchemaVersionPeriods,
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	// Newest first.
	s.periods[userID] = append([]*api.PeriodDoc{doc}, s.periods[userID]...)
	return clonePeriod(doc), nil
}

func (s *MemoryStore) ListPeriods(_ context.Context, limit int) ([]api.PeriodDoc, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	docs := s.periods[userID]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	result := make([]api.PeriodDoc, len(docs))
	for n, d := range docs {
		result[n] = *clonePeriod(d)
	}
	return result, nil
}

func (s *MemoryStore) find(userID, id string) (*api.PeriodDoc, error) {
	for _, d := range s.periods[userID] {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: period %s", common.ErrorNotFound, id)
}

func (s *MemoryStore) GetPeriod(_ context.Context, id string) (*api.PeriodDoc, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	doc, err := s.find(userID, id)
	if err != nil {
		return nil, err
	}
	return clonePeriod(doc), nil
}

func (s *MemoryStore) DeletePeriod(_ context.Context, id string) error {
	userID, err := s.requireSession()
	if err != nil {
		return err
	}
	docs := s.periods[userID]
	for n, d := range docs {
		if d.ID == id {
			s.periods[userID] = append(docs[:n:n], docs[n+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: period %s", common.ErrorNotFound, id)
}

func (s *MemoryStore) UnionAccount(_ context.Context, periodID string, account api.AccountDoc) (*api.PeriodDoc, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	doc, err := s.find(userID, periodID)
	if err != nil {
		return nil, err
	}
	present := false
	for _, a := range doc.Accounts {
		if a.ID == account.ID {
			present = true
			break
		}
	}
	if !present {
		doc.Accounts = append(doc.Accounts, account)
	}
	return clonePeriod(doc), nil
}

func (s *MemoryStore) RemoveAccount(_ context.Context, periodID, accountID string) (*api.PeriodDoc, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	doc, err := s.find(userID, periodID)
	if err != nil {
		return nil, err
	}
	kept := doc.Accounts[:0]
	for _, a := range doc.Accounts {
		if a.ID != accountID {
			kept = append(kept, a)
		}
	}
	doc.Accounts = kept
	return clonePeriod(doc), nil
}

func (s *MemoryStore) ReplaceAccounts(_ context.Context, periodID string, accounts []api.AccountDoc) (*api.PeriodDoc, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	doc, err := s.find(userID, periodID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []api.AccountDoc{}
	}
	doc.Accounts = accounts
	return clonePeriod(doc), nil
}

func clonePeriod(d *api.PeriodDoc) *api.PeriodDoc {
	c := *d
	c.Accounts = make([]api.AccountDoc, len(d.Accounts))
	copy(c.Accounts, d.Accounts)
	return &c
}
