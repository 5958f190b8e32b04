package httpapi

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/cryptox"
	"github.com/avoronov/periodvault/internal/server/auth"
	"github.com/avoronov/periodvault/internal/server/models"
)

const saltSize = 16

func (s *Server) ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) register(c echo.Context) error {
	ctx := c.Request().Context()

	var req api.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	salt := common.GenerateRandByteArray(saltSize)
	user := &models.User{
		Username:     req.Username,
		Salt:         salt,
		PasswordHash: cryptox.HashPassword([]byte(req.Password), salt),
	}

	result, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		}
		return s.internal(c, err)
	}

	s.logger.Info(ctx, "registered", "username", req.Username, "id", result.ID)
	return c.NoContent(http.StatusCreated)
}

func (s *Server) login(c echo.Context) error {
	ctx := c.Request().Context()

	var req api.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return s.internal(c, err)
	}

	candidate := cryptox.HashPassword([]byte(req.Password), user.Salt)
	if subtle.ConstantTimeCompare(candidate, user.PasswordHash) == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := auth.GenerateToken(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		return s.internal(c, err)
	}

	return c.JSON(http.StatusOK, api.LoginResponse{UserID: user.ID, AccessToken: token})
}

func (s *Server) getKey(c echo.Context) error {
	user, err := s.users.GetByID(c.Request().Context(), callerID(c))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return s.internal(c, err)
	}

	resp := api.KeyResponse{}
	if user.EncryptionKey != nil {
		resp.EncryptionKey = base64.StdEncoding.EncodeToString(user.EncryptionKey)
	}
	return c.JSON(http.StatusOK, resp)
}

// claimKey merges the offered key into the caller's profile with
// create-if-absent semantics: when a key is already stored, the stored key is
// returned and the offered one is discarded.
func (s *Server) claimKey(c echo.Context) error {
	ctx := c.Request().Context()

	var req api.ClaimKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	offered, err := base64.StdEncoding.DecodeString(req.EncryptionKey)
	if err != nil || len(offered) != common.KeySize {
		return echo.NewHTTPError(http.StatusBadRequest, "encryptionKey must be a base64 256-bit value")
	}

	stored, err := s.users.ClaimEncryptionKey(ctx, callerID(c), offered)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return s.internal(c, err)
	}

	return c.JSON(http.StatusOK, api.KeyResponse{EncryptionKey: base64.StdEncoding.EncodeToString(stored)})
}

func (s *Server) createPeriod(c echo.Context) error {
	ctx := c.Request().Context()

	var req api.CreatePeriodRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Label == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "period label is required")
	}

	period := &models.Period{
		ID:            uuid.NewString(),
		UserID:        callerID(c),
		Label:         req.Label,
		Accounts:      req.Accounts,
		SchemaVersion: api.SchemaVersionPeriods,
		CreatedAt:     time.Now().UTC(),
	}
	if period.Accounts == nil {
		period.Accounts = []api.AccountDoc{}
	}

	doc := period.Doc()
	if err := doc.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.periods.Create(ctx, period)
	if err != nil {
		return s.internal(c, err)
	}

	s.logger.Info(ctx, "period created", "id", result.ID, "user", result.UserID)
	return c.JSON(http.StatusCreated, result.Doc())
}

func (s *Server) listPeriods(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	list, err := s.periods.ListByUser(c.Request().Context(), callerID(c), limit)
	if err != nil {
		return s.internal(c, err)
	}

	resp := api.PeriodListResponse{Periods: make([]api.PeriodDoc, 0, len(list))}
	for i := range list {
		resp.Periods = append(resp.Periods, list[i].Doc())
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getPeriod(c echo.Context) error {
	period, err := s.ownedPeriod(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, period.Doc())
}

func (s *Server) deletePeriod(c echo.Context) error {
	period, err := s.ownedPeriod(c)
	if err != nil {
		return err
	}

	if err := s.periods.Delete(c.Request().Context(), period.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return s.internal(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) unionAccount(c echo.Context) error {
	period, err := s.ownedPeriod(c)
	if err != nil {
		return err
	}

	var req api.UnionAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Account.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account id is required")
	}

	result, err := s.periods.UnionAccount(c.Request().Context(), period.ID, req.Account)
	if err != nil {
		return s.internal(c, err)
	}
	return c.JSON(http.StatusOK, result.Doc())
}

func (s *Server) removeAccount(c echo.Context) error {
	period, err := s.ownedPeriod(c)
	if err != nil {
		return err
	}

	var req api.RemoveAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.AccountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account id is required")
	}

	result, err := s.periods.RemoveAccount(c.Request().Context(), period.ID, req.AccountID)
	if err != nil {
		return s.internal(c, err)
	}
	return c.JSON(http.StatusOK, result.Doc())
}

func (s *Server) replaceAccounts(c echo.Context) error {
	period, err := s.ownedPeriod(c)
	if err != nil {
		return err
	}

	var req api.ReplaceAccountsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Accounts == nil {
		req.Accounts = []api.AccountDoc{}
	}

	result, err := s.periods.ReplaceAccounts(c.Request().Context(), period.ID, req.Accounts)
	if err != nil {
		return s.internal(c, err)
	}
	return c.JSON(http.StatusOK, result.Doc())
}

// ownedPeriod loads the :id period and enforces ownership: absent documents
// yield 404, documents owned by another user yield 403.
func (s *Server) ownedPeriod(c echo.Context) (*models.Period, error) {
	period, err := s.periods.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, s.internal(c, err)
	}
	if period.UserID != callerID(c) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "unauthorized")
	}
	return period, nil
}

func (s *Server) internal(c echo.Context, err error) error {
	s.logger.Error(c.Request().Context(), err.Error())
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
