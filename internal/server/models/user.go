// Package models defines server-side data models stored in PostgreSQL.
package models

import "time"

// User is an account holder's profile record. EncryptionKey is nil until the
// client claims one; it is merge-updated only (the claim never clobbers an
// existing key) and never rotated.
type User struct {
	ID            string
	Username      string
	Salt          []byte
	PasswordHash  []byte
	EncryptionKey []byte
	CreatedAt     time.Time
}
