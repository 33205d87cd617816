package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
)

const resetSecretSize = 32

// NewUserID returns a fresh random user id.
func NewUserID() string {
	return uuid.NewString()
}

// NewResetSecret draws the opaque password-reset secret. The raw bytes are
// mailed to the user (base64url encoded); only the SHA-256 digest is ever
// persisted.
func NewResetSecret() ([resetSecretSize]byte, error) {
	var secret [resetSecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

// EncodeResetToken renders the secret in the form embedded into the reset
// link.
func EncodeResetToken(secret [resetSecretSize]byte) string {
	return base64.RawURLEncoding.EncodeToString(secret[:])
}

// HashResetSecret is the persisted digest of a reset secret, hex encoded
// for use inside store keys.
func HashResetSecret(secret [resetSecretSize]byte) string {
	sum := sha256.Sum256(secret[:])
	return hex.EncodeToString(sum[:])
}

// HashResetToken decodes a presented reset token and returns the digest to
// look up. The error stays generic so callers cannot build a format oracle.
func HashResetToken(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", errors.New("invalid reset token")
	}
	if len(raw) != resetSecretSize {
		return "", errors.New("invalid reset token")
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
