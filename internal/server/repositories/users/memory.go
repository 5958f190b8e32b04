package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used in tests.
type InMemoryRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*models.User)}
}

func (r *InMemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, common.ErrorAlreadyExists
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = cloneUser(user)
	return user, nil
}

func (r *InMemoryRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (r *InMemoryRepository) ClaimEncryptionKey(_ context.Context, userID string, key []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.EncryptionKey == nil {
		u.EncryptionKey = append([]byte(nil), key...)
	}
	return append([]byte(nil), u.EncryptionKey...), nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Salt = append([]byte(nil), u.Salt...)
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	if u.EncryptionKey != nil {
		c.EncryptionKey = append([]byte(nil), u.EncryptionKey...)
	}
	return &c
}
