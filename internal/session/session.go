// Package session implements the session authority: it mints signed session
// tokens on login, resolves incoming tokens to an owner identity, and
// enforces a single live session per principal.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the session cookie carried by the browser. The cookie holds
// only the signed token, never the master secret or a derived key.
const CookieName = "vault_session"

// ErrUnauthenticated is returned by Resolve for any token that cannot be
// trusted: missing, expired, badly signed, or superseded by a newer login.
// All of those look identical to the caller (fail closed).
var ErrUnauthenticated = errors.New("session: unauthenticated")

// Identity is the authenticated owner a valid session stands in for.
type Identity struct {
	UserID string
	Email  string
}

// Repository is the persistence needed to keep at most one live session per
// principal.
type Repository interface {
	// Replace atomically installs tokenID as the principal's only live
	// session, destroying any previous one. A racing second login must
	// not be able to resurrect the session it replaced.
	Replace(ctx context.Context, userID, tokenID string, issuedAt time.Time) error
	// Live reports whether tokenID is the principal's current session.
	Live(ctx context.Context, userID, tokenID string) (bool, error)
	// Delete destroys the principal's session if it matches tokenID.
	Delete(ctx context.Context, userID, tokenID string) error
}

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

// Authority issues and resolves signed session tokens.
type Authority struct {
	secret []byte
	ttl    time.Duration
	repo   Repository
}

// New constructs an Authority. secret is the server-held signing key, ttl
// bounds how long an issued token stays resolvable.
func New(secret []byte, ttl time.Duration, repo Repository) *Authority {
	return &Authority{secret: secret, ttl: ttl, repo: repo}
}

// Issue signs a fresh session token for id and installs it as the
// principal's only live session. Any prior session is destroyed first, so a
// pre-authentication token can never be fixated into an authenticated one.
func (a *Authority) Issue(ctx context.Context, id Identity) (string, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		UserID: id.UserID,
		Email:  id.Email,
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	if err := a.repo.Replace(ctx, id.UserID, tokenID, now); err != nil {
		return "", fmt.Errorf("install session: %w", err)
	}
	return signed, nil
}

// Resolve verifies a token and returns the identity it stands in for. Any
// verification failure, and any token superseded by a newer login, yields
// ErrUnauthenticated.
func (a *Authority) Resolve(ctx context.Context, token string) (Identity, error) {
	c, err := a.parse(token)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}

	live, err := a.repo.Live(ctx, c.UserID, c.ID)
	if err != nil {
		return Identity{}, fmt.Errorf("check session: %w", err)
	}
	if !live {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{UserID: c.UserID, Email: c.Email}, nil
}

// Destroy ends the session a token stands for. Tokens that do not verify
// are ignored: there is nothing of theirs to destroy.
func (a *Authority) Destroy(ctx context.Context, token string) error {
	c, err := a.parse(token)
	if err != nil {
		return nil
	}
	return a.repo.Delete(ctx, c.UserID, c.ID)
}

func (a *Authority) parse(token string) (*claims, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || c.UserID == "" {
		return nil, ErrUnauthenticated
	}
	return c, nil
}
