// Package common defines shared constants and sentinel errors used across
// client and server layers of PeriodVault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Session / authorization errors.
	ErrorNotAuthenticated = errors.New("not authenticated")
	ErrorUnauthorized     = errors.New("unauthorized")

	// Cipher-level errors (wrong key, corrupted ciphertext, or plaintext
	// that does not parse back into its expected form).
	ErrorEncryptionFailure = errors.New("encryption failure")

	// Remote document store errors (network or service failures).
	ErrorRemoteStore = errors.New("remote store failure")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors.
	ErrorValidation    = errors.New("validation error")
	ErrorAlreadyExists = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
