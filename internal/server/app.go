// Package server initializes and runs the document-store service: it wires
// the PostgreSQL repositories, applies migrations, and serves the HTTP API
// until an OS signal triggers graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avoronov/periodvault/internal/logging"
	"github.com/avoronov/periodvault/internal/server/config"
	"github.com/avoronov/periodvault/internal/server/httpapi"
	"github.com/avoronov/periodvault/internal/server/repositories/repomanager"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	rm, err := repomanager.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	server := httpapi.NewServer(c.EndpointAddr, logger, rm.Users(), rm.Periods(), c.SecretKey, c.AccessTokenValidityDuration)

	return &App{config: c, logger: logger, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
