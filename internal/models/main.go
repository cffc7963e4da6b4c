// Package models defines the core data structures for users and vault records.
package models

import "time"

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Email is the case-normalized login email, unique per user.
	Email string
	// PasswordHash is the bcrypt hash of the login password.
	PasswordHash string
	// EncSalt is the per-user base64 salt used for secret-field key
	// derivation. Generated once at registration and never rotated:
	// re-salting without re-encrypting every record would make them
	// unrecoverable.
	EncSalt string
	// CreatedAt is the registration timestamp.
	CreatedAt time.Time
}

// SealedSecret is the opaque envelope blob persisted for a record's secret
// value. Storage never needs to understand it beyond these two fields.
type SealedSecret struct {
	// NonceB64 is the base64-encoded 96-bit GCM nonce.
	NonceB64 string `json:"nonce_b64"`
	// CiphertextB64 is the base64-encoded ciphertext with the
	// authentication tag appended.
	CiphertextB64 string `json:"ciphertext_b64"`
}

// Empty reports whether the blob carries no sealed payload.
func (s SealedSecret) Empty() bool {
	return s.NonceB64 == "" && s.CiphertextB64 == ""
}

// VaultRecord is one stored credential entry. OwnerEmail is set at creation
// and never changed by an update.
type VaultRecord struct {
	ID         string       `json:"id"`
	OwnerEmail string       `json:"ownerEmail"`
	Title      string       `json:"title"`
	Username   string       `json:"username"`
	URL        string       `json:"url,omitempty"`
	Secret     SealedSecret `json:"secret"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  *time.Time   `json:"updatedAt,omitempty"`
}
