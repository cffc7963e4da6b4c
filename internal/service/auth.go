// Package service provides business logic for registration, login and vault
// record management, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/crypto"
	"github.com/passkeep/passkeep/internal/models"
	"github.com/passkeep/passkeep/internal/repository"
	"github.com/passkeep/passkeep/internal/session"
)

var (
	// ErrInvalidCredentials is the single answer for every failed login.
	// It never reveals whether the email or the password was wrong, or
	// whether the account exists at all.
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	// ErrValidation marks a request rejected before any storage or
	// cryptographic work.
	ErrValidation = errors.New("service: invalid input")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// dummyHash is a bcrypt blob compared against when the email is unknown, so
// login timing does not reveal whether an account exists.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// UserRepository defines the persistence operations required by AuthService.
type UserRepository interface {
	// CreateUser creates a new user row; a taken email yields
	// repository.ErrDuplicateEmail.
	CreateUser(ctx context.Context, u models.User) error
	// GetUserByEmail fetches a user by normalized email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionAuthority defines the session operations required by AuthService.
type SessionAuthority interface {
	// Issue mints a signed token and installs it as the principal's only
	// live session.
	Issue(ctx context.Context, id session.Identity) (string, error)
	// Destroy ends the session the token stands for.
	Destroy(ctx context.Context, token string) error
}

// AuthService implements registration, login and logout.
type AuthService struct {
	users    UserRepository
	sessions SessionAuthority
}

// NewAuthService constructs an AuthService from its collaborators.
func NewAuthService(users UserRepository, sessions SessionAuthority) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// NormalizeEmail lowercases and trims an email so there is exactly one user
// per address regardless of how it was typed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account: credential hash plus a one-time random
// encryption salt. The salt is immutable for the life of the account.
func (s *AuthService) Register(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return validationError("email is required")
	}
	if password == "" {
		return validationError("password is required")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	salt, err := crypto.NewSalt()
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	return s.users.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		EncSalt:      salt,
		CreatedAt:    time.Now(),
	})
}

// Login verifies credentials and returns a fresh session token. Any prior
// session for the same principal is destroyed by the issue step.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// Burn a bcrypt comparison anyway so an unknown email takes as
		// long as a wrong password.
		_, _ = crypto.VerifyPassword(password, dummyHash)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		// Storage failure is not a credential problem. It must surface as
		// a server error, not a 401.
		return "", fmt.Errorf("login: %w", err)
	}

	ok, err := crypto.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		// Malformed stored hash is corruption, not a bad password.
		return "", fmt.Errorf("login: %w", err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(ctx, session.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// Logout destroys the session the token stands for. Unknown tokens are a
// no-op, so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// EncSalt returns the caller's immutable key-derivation salt.
func (s *AuthService) EncSalt(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("enc salt: %w", err)
	}
	return user.EncSalt, nil
}
