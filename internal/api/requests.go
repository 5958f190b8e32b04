package api

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest authenticates a user.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token and the user's id.
type LoginResponse struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
}

// KeyResponse returns the user's encryption key (base64). EncryptionKey is
// empty when no key has been provisioned yet.
type KeyResponse struct {
	EncryptionKey string `json:"encryptionKey"`
}

// ClaimKeyRequest offers a freshly generated key (base64) for the
// create-if-absent claim. The response is the authoritative stored key,
// which may differ from the offered one if another session claimed first.
type ClaimKeyRequest struct {
	EncryptionKey string `json:"encryptionKey"`
}

// CreatePeriodRequest creates a new period document owned by the caller.
type CreatePeriodRequest struct {
	Label    string       `json:"period"`
	Accounts []AccountDoc `json:"accounts"`
}

// UnionAccountRequest appends an account to a period's account list,
// keyed by account id: the operation is a no-op if the id is already present.
type UnionAccountRequest struct {
	Account AccountDoc `json:"account"`
}

// RemoveAccountRequest removes an account from a period's account list by id.
// Removing an absent id is a no-op.
type RemoveAccountRequest struct {
	AccountID string `json:"accountId"`
}

// ReplaceAccountsRequest overwrites a period's entire account list.
type ReplaceAccountsRequest struct {
	Accounts []AccountDoc `json:"accounts"`
}

// PeriodListResponse wraps an ordered (newest first) list of periods.
type PeriodListResponse struct {
	Periods []PeriodDoc `json:"periods"`
}

// ErrorResponse is the uniform error body returned by the server.
type ErrorResponse struct {
	Error string `json:"error"`
}
