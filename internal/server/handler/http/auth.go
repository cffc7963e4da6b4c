// Package http provides the HTTP handlers and router for the passkeep API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/passkeep/passkeep/internal/middleware"
	"github.com/passkeep/passkeep/internal/repository"
	"github.com/passkeep/passkeep/internal/service"
	"github.com/passkeep/passkeep/internal/session"
)

// AuthService defines the authentication operations required by the HTTP
// handlers.
type AuthService interface {
	// Register creates a new account.
	Register(ctx context.Context, email, password string) error
	// Login verifies credentials and returns a session token.
	Login(ctx context.Context, email, password string) (string, error)
	// Logout destroys the session the token stands for.
	Logout(ctx context.Context, token string) error
	// EncSalt returns the user's key-derivation salt.
	EncSalt(ctx context.Context, email string) (string, error)
}

// AuthHandler handles registration, login, logout and salt retrieval.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// CookieSecure marks the session cookie Secure (HTTPS deployments).
	CookieSecure bool
	// Logger records security-relevant events.
	Logger *zap.Logger
}

// credentialsRequest is the JSON payload for registration and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/register.
// It expects a JSON body with "email" and "password".
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := h.AuthService.Register(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeOK(w)
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "email and password are required")
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email already registered")
	default:
		h.Logger.Error("register failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Login handles POST /api/login.
// On success it sets the signed session cookie. Every failure mode gets the
// same generic message: no hint whether the email or the password was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.Logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeOK(w)
}

// Logout handles POST /api/logout. It destroys the server-side session and
// clears the cookie. Logging out without a session is still a success.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if err := h.AuthService.Logout(r.Context(), cookie.Value); err != nil {
			h.Logger.Error("logout failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeOK(w)
}

// EncSalt handles GET /api/enc-salt. It returns the authenticated user's
// immutable key-derivation salt; the client needs it to derive the vault key.
func (h *AuthHandler) EncSalt(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	salt, err := h.AuthService.EncSalt(r.Context(), id.Email)
	if err != nil {
		h.Logger.Error("enc salt lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"encSalt": salt})
}
