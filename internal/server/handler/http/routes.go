package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/passkeep/passkeep/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler that serves the passkeep API.
//
// Routes:
//
//	POST   /api/register     → authHandler.Register
//	POST   /api/login        → authHandler.Login
//	POST   /api/logout       → authHandler.Logout
//	GET    /api/enc-salt     → authHandler.EncSalt   (session required)
//	POST   /api/vault        → vaultHandler.Create   (session required)
//	GET    /api/vault        → vaultHandler.List     (session required)
//	PUT    /api/vault/{id}   → vaultHandler.Update   (session required)
//	DELETE /api/vault/{id}   → vaultHandler.Delete   (session required)
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON bodies
//  2. WithRequestLogging(logger)           — logs each request
//  3. SessionAuth(resolver, logger)        — protected group only
func NewRouter(
	authHandler *AuthHandler,
	vaultHandler *VaultHandler,
	resolver middleware.Resolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// Protected group: requires a valid session cookie
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(resolver, logger))

			r.Get("/enc-salt", authHandler.EncSalt)
			r.Post("/vault", vaultHandler.Create)
			r.Get("/vault", vaultHandler.List)
			r.Put("/vault/{id}", vaultHandler.Update)
			r.Delete("/vault/{id}", vaultHandler.Delete)
		})
	})

	return r
}
