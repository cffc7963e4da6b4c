package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the derived key length in bytes (AES-256).
	KeySize = 32
	// Iterations is the PBKDF2 iteration count.
	Iterations = 250_000
	// SaltSize is the per-user salt length in bytes.
	SaltSize = 16
)

// ErrMissingSalt is returned when key derivation is attempted without a salt.
// There is deliberately no fallback to a default salt.
var ErrMissingSalt = errors.New("crypto: missing key derivation salt")

// DeriveKey stretches a master secret and a per-user salt into an AES-256
// key with PBKDF2-SHA256. The result is deterministic for a given
// (master, salt) pair and must never be persisted.
func DeriveKey(master, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, ErrMissingSalt
	}
	return pbkdf2.Key(master, salt, Iterations, KeySize, sha256.New), nil
}

// DeriveKeyB64 is DeriveKey for a base64 salt as stored on the User record.
func DeriveKeyB64(master []byte, saltB64 string) ([]byte, error) {
	if saltB64 == "" {
		return nil, ErrMissingSalt
	}
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	return DeriveKey(master, salt)
}

// NewSalt generates a fresh random salt, base64-encoded for storage.
// Called exactly once per user at registration.
func NewSalt() (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}
