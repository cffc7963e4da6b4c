package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/passkeep/passkeep/internal/models"
)

// ErrAuthentication is returned by Open when the authentication tag does not
// verify. The blob was tampered with or sealed under a different key; no
// plaintext is ever returned alongside it.
var ErrAuthentication = errors.New("crypto: envelope authentication failed")

// Seal encrypts plaintext under an AES-256-GCM key and returns an opaque
// blob of base64 nonce and ciphertext+tag. A fresh random 96-bit nonce is
// generated on every call; nonces are never derived from a counter.
func Seal(plaintext, key []byte) (models.SealedSecret, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return models.SealedSecret{}, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return models.SealedSecret{}, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, nil)
	return models.SealedSecret{
		NonceB64:      base64.StdEncoding.EncodeToString(nonce),
		CiphertextB64: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Open decrypts a sealed blob. The tag is verified before any plaintext is
// released; on mismatch it returns ErrAuthentication.
func Open(blob models.SealedSecret, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce, err := base64.StdEncoding.DecodeString(blob.NonceB64)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, ErrAuthentication
	}
	ciphertext, err := base64.StdEncoding.DecodeString(blob.CiphertextB64)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return aead, nil
}
