// Package common contains shared constants and sentinel errors used across
// PeriodVault components.
package common

// AccessTokenHeaderName is the HTTP header used to carry the access token on
// outbound requests.
const AccessTokenHeaderName = "Authorization"

// KeySize is the size in bytes of a per-user encryption key (AES-256).
const KeySize = 32
