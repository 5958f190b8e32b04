// Package cli implements the interactive PeriodVault client: a small REPL
// over the auth, ledger and state services.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/avoronov/periodvault/internal/client/config"
	"github.com/avoronov/periodvault/internal/client/docstore"
	"github.com/avoronov/periodvault/internal/client/repositories/cache"
	"github.com/avoronov/periodvault/internal/client/services"

	_ "modernc.org/sqlite"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	ledger      services.LedgerService
	db          *sql.DB
	state       *services.StateStore
	userName    string
	reader      *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := cache.InitDatabase(ctx, c.CacheDSN)
	if err != nil {
		log.Printf("error initializing cache database: %s", err.Error())
		return nil, err
	}

	store := docstore.NewHTTPStore(c.ServerEndpointAddr, c.RequestTimeout)

	as := services.NewAuthService(store)
	ls := services.NewLedgerService(store)

	return &App{
		config:      c,
		authService: as,
		ledger:      ls,
		db:          db,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.state != nil
}

func (a *App) getStatus() string {
	if a.userName != "" {
		return fmt.Sprintf("(%s)", a.userName)
	}
	return ""
}

func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to PeriodVault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
