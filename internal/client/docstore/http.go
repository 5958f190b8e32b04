package docstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/avoronov/periodvault/internal/api"
	"github.com/avoronov/periodvault/internal/common"
)

// HTTPStore implements DocumentStore over the server's REST API.
// It is not safe for concurrent use: the CLI drives it from a single loop.
type HTTPStore struct {
	client  *resty.Client
	session *Session
}

var _ DocumentStore = (*HTTPStore)(nil)

// NewHTTPStore returns a store talking to the API at baseURL.
func NewHTTPStore(baseURL string, timeout time.Duration) *HTTPStore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &HTTPStore{client: client}
}

func (s *HTTPStore) Session() *Session {
	return s.session
}

func (s *HTTPStore) ClearSession() {
	s.session = nil
}

func (s *HTTPStore) request(ctx context.Context) *resty.Request {
	r := s.client.R().SetContext(ctx)
	if s.session != nil {
		r.SetAuthToken(s.session.AccessToken)
	}
	return r
}

// checkResponse maps call outcomes to the shared sentinel errors.
// Transport failures become ErrorRemoteStore; HTTP error statuses map to
// the sentinel matching their meaning, with the server's message attached.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorRemoteStore, err)
	}
	if resp.IsSuccess() {
		return nil
	}

	var body api.ErrorResponse
	msg := resp.Status()
	if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrorNotAuthenticated, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, msg)
	default:
		return fmt.Errorf("%w: %s", common.ErrorRemoteStore, msg)
	}
}

func (s *HTTPStore) Register(ctx context.Context, username, password string) error {
	resp, err := s.request(ctx).
		SetBody(api.RegisterRequest{Username: username, Password: password}).
		Post("/api/auth/register")
	return checkResponse(resp, err)
}

func (s *HTTPStore) Login(ctx context.Context, username, password string) (*Session, error) {
	var result api.LoginResponse
	resp, err := s.request(ctx).
		SetBody(api.LoginRequest{Username: username, Password: password}).
		SetResult(&result).
		Post("/api/auth/login")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	s.session = &Session{UserID: result.UserID, AccessToken: result.AccessToken}
	return s.session, nil
}

func (s *HTTPStore) Ping(ctx context.Context) error {
	resp, err := s.request(ctx).Get("/api/ping")
	return checkResponse(resp, err)
}

func (s *HTTPStore) GetKey(ctx context.Context) ([]byte, error) {
	var result api.KeyResponse
	resp, err := s.request(ctx).SetResult(&result).Get("/api/users/me/key")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	if result.EncryptionKey == "" {
		return nil, fmt.Errorf("%w: no encryption key provisioned", common.ErrorNotFound)
	}
	return base64.StdEncoding.DecodeString(result.EncryptionKey)
}

func (s *HTTPStore) ClaimKey(ctx context.Context, key []byte) ([]byte, error) {
	var result api.KeyResponse
	resp, err := s.request(ctx).
		SetBody(api.ClaimKeyRequest{EncryptionKey: base64.StdEncoding.EncodeToString(key)}).
		SetResult(&result).
		Post("/api/users/me/key/claim")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(result.EncryptionKey)
}

func (s *HTTPStore) CreatePeriod(ctx context.Context, label string, accounts []api.AccountDoc) (*api.PeriodDoc, error) {
	var result api.PeriodDoc
	resp, err := s.request(ctx).
		SetBody(api.CreatePeriodRequest{Label: label, Accounts: accounts}).
		SetResult(&result).
		Post("/api/periods")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *HTTPStore) ListPeriods(ctx context.Context, limit int) ([]api.PeriodDoc, error) {
	var result api.PeriodListResponse
	r := s.request(ctx).SetResult(&result)
	if limit > 0 {
		r.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := r.Get("/api/periods")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return result.Periods, nil
}

func (s *HTTPStore) GetPeriod(ctx context.Context, id string) (*api.PeriodDoc, error) {
	var result api.PeriodDoc
	resp, err := s.request(ctx).SetResult(&result).Get("/api/periods/" + id)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *HTTPStore) DeletePeriod(ctx context.Context, id string) error {
	resp, err := s.request(ctx).Delete("/api/periods/" + id)
	return checkResponse(resp, err)
}

func (s *HTTPStore) UnionAccount(ctx context.Context, periodID string, account api.AccountDoc) (*api.PeriodDoc, error) {
	var result api.PeriodDoc
	resp, err := s.request(ctx).
		SetBody(api.UnionAccountRequest{Account: account}).
		SetResult(&result).
		Post("/api/periods/" + periodID + "/accounts/union")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *HTTPStore) RemoveAccount(ctx context.Context, periodID, accountID string) (*api.PeriodDoc, error) {
	var result api.PeriodDoc
	resp, err := s.request(ctx).
		SetBody(api.RemoveAccountRequest{AccountID: accountID}).
		SetResult(&result).
		Post("/api/periods/" + periodID + "/accounts/remove")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *HTTPStore) ReplaceAccounts(ctx context.Context, periodID string, accounts []api.AccountDoc) (*api.PeriodDoc, error) {
	var result api.PeriodDoc
	resp, err := s.request(ctx).
		SetBody(api.ReplaceAccountsRequest{Accounts: accounts}).
		SetResult(&result).
		Put("/api/periods/" + periodID + "/accounts")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}
