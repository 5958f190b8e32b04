package services

import (
	"context"
	"fmt"

	"github.com/avoronov/periodvault/internal/client/docstore"
)

// AuthService defines authentication operations for the CLI.
type AuthService interface {
	// Register creates a new user on the server.
	Register(ctx context.Context, username string, password []byte) error

	// SignIn authenticates against the server and resolves the user's
	// encryption key, provisioning one on first sign-in.
	SignIn(ctx context.Context, username string, password []byte) (*docstore.Session, []byte, error)

	// SignOut forgets the current session. Callers are expected to clear
	// the local state cache first.
	SignOut(ctx context.Context) error

	// Ping checks server liveness.
	Ping(ctx context.Context) error
}

type authService struct {
	store docstore.DocumentStore
}

// NewAuthService constructs an AuthService bound to the given store.
func NewAuthService(store docstore.DocumentStore) AuthService {
	return &authService{store: store}
}

func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	return a.store.Register(ctx, username, string(password))
}

func (a *authService) SignIn(ctx context.Context, username string, password []byte) (*docstore.Session, []byte, error) {
	session, err := a.store.Login(ctx, username, string(password))
	if err != nil {
		return nil, nil, fmt.Errorf("login error: %w", err)
	}

	key, err := ResolveEncryptionKey(ctx, a.store)
	if err != nil {
		return nil, nil, fmt.Errorf("key resolution error: %w", err)
	}

	return session, key, nil
}

func (a *authService) SignOut(_ context.Context) error {
	a.store.ClearSession()
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}
