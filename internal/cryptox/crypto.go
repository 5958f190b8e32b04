// Package cryptox implements the field-level cipher used to protect account
// names and balances before they leave the client, plus key helpers.
//
// Fields are encrypted with AES-GCM under a per-user 256-bit key. Each call
// generates a fresh random 12-byte nonce, which is prepended to the sealed
// bytes; the result is base64-encoded so the ciphertext is an opaque string
// safe to store as a document field. Two encryptions of the same plaintext
// therefore produce different ciphertexts.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/avoronov/periodvault/internal/common"
)

// GenerateKey returns a new random 256-bit encryption key.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(common.KeySize)
}

// HashPassword derives a password hash from (password, salt) using Argon2id.
// Used server-side as the stored credential; never used as an encryption key.
func HashPassword(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// EncryptField encrypts a single plaintext string under key.
//
// The key must be a valid AES key length (16, 24, or 32 bytes). The returned
// string is base64(nonce || sealed) and is safe for storage as a document
// string field.
func EncryptField(plaintext string, key []byte) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	sealed := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(append(nonce, sealed...)), nil
}

// DecryptField reverses EncryptField. Decryption with a key other than the
// one the ciphertext was sealed under fails; AES-GCM authentication makes
// "wrong key" and "corrupted ciphertext" indistinguishable, and both are
// reported wrapped in common.ErrorEncryptionFailure.
func DecryptField(ciphertext string, key []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorEncryptionFailure, err)
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	if len(raw) < aesgcm.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", common.ErrorEncryptionFailure)
	}
	nonce, sealed := raw[:aesgcm.NonceSize()], raw[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorEncryptionFailure, err)
	}

	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorEncryptionFailure, err)
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorEncryptionFailure, err)
	}

	return aesgcm, nil
}
