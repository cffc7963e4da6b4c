// Package crypto implements the credential hasher, the key derivation
// unit and the envelope cipher used to protect vault secrets.
package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the adaptive work factor for password hashing. Tuned so a
// single verification takes tens of milliseconds.
const BcryptCost = 12

// ErrEmptyPassword is returned when an empty password is hashed.
var ErrEmptyPassword = errors.New("crypto: empty password")

// HashPassword hashes a login password with bcrypt. The returned blob embeds
// its own salt and cost parameter, so verification is self-describing.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a password against a stored bcrypt blob.
// A mismatch returns (false, nil). A malformed blob returns a non-nil
// error: that is data corruption, never treated as "no match".
func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("verify password: %w", err)
}
