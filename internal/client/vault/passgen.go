package vault

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.<>?/|"

	// lookAlikes are characters that read ambiguously in many fonts.
	lookAlikes = "0O1lI|`'\""
)

// ErrEmptyCharset is returned when the generation options leave no
// characters to pick from.
var ErrEmptyCharset = errors.New("vault client: empty password charset")

// GenerateOptions controls password generation.
type GenerateOptions struct {
	Length           int
	Symbols          bool
	ExcludeLookAlike bool
}

// ExcludeLookAlikes strips ambiguous characters from a charset.
func ExcludeLookAlikes(chars string) string {
	var b strings.Builder
	for _, c := range chars {
		if !strings.ContainsRune(lookAlikes, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// GeneratePassword produces a random password from crypto/rand.
func GeneratePassword(opts GenerateOptions) (string, error) {
	if opts.Length <= 0 {
		opts.Length = 20
	}

	charset := lowerChars + upperChars + digitChars
	if opts.Symbols {
		charset += symbolChars
	}
	if opts.ExcludeLookAlike {
		charset = ExcludeLookAlikes(charset)
	}
	if charset == "" {
		return "", ErrEmptyCharset
	}

	var b strings.Builder
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < opts.Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		b.WriteByte(charset[n.Int64()])
	}
	return b.String(), nil
}
