// Package httpapi exposes the document store over HTTP. The surface is
// deliberately dumb: auth, user-profile key claims, and store-level period
// document operations. All domain logic (encryption, copy-forward, percentage
// derivation) lives in the client.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/logging"
	"github.com/avoronov/periodvault/internal/server/repositories/periods"
	"github.com/avoronov/periodvault/internal/server/repositories/users"
)

type Server struct {
	e        *echo.Echo
	addr     string
	logger   logging.Logger
	users    users.Repository
	periods  periods.Repository
	secret   []byte
	tokenTTL time.Duration
}

func NewServer(addr string, logger logging.Logger, usersRepo users.Repository, periodsRepo periods.Repository, secretKey string, tokenTTL time.Duration) *Server {
	s := &Server{
		e:        echo.New(),
		addr:     addr,
		logger:   logger,
		users:    usersRepo,
		periods:  periodsRepo,
		secret:   []byte(secretKey),
		tokenTTL: tokenTTL,
	}

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())
	s.e.HTTPErrorHandler = errorHandler

	s.routes()
	return s
}

// errorHandler renders every error as the uniform api.ErrorResponse body.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	_ = c.JSON(code, api.ErrorResponse{Error: msg})
}

func (s *Server) routes() {
	g := s.e.Group("/api")

	g.POST("/auth/register", s.register)
	g.POST("/auth/login", s.login)
	g.GET("/ping", s.ping)

	authed := g.Group("", s.authRequired)
	authed.GET("/users/me/key", s.getKey)
	authed.POST("/users/me/key/claim", s.claimKey)

	authed.POST("/periods", s.createPeriod)
	authed.GET("/periods", s.listPeriods)
	authed.GET("/periods/:id", s.getPeriod)
	authed.DELETE("/periods/:id", s.deletePeriod)
	authed.POST("/periods/:id/accounts/union", s.unionAccount)
	authed.POST("/periods/:id/accounts/remove", s.removeAccount)
	authed.PUT("/periods/:id/accounts", s.replaceAccounts)
}

// Handler returns the root http.Handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.e.Shutdown(shutdownCtx)
	}
}
