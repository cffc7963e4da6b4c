// Package main initializes and starts the passkeep API server, setting up
// configuration, logging, the database connection, repositories, services
// and handlers.
package main

import (
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/passkeep/passkeep/internal/config"
	"github.com/passkeep/passkeep/internal/db"
	"github.com/passkeep/passkeep/internal/logger"
	"github.com/passkeep/passkeep/internal/repository"
	"github.com/passkeep/passkeep/internal/server/handler/http"
	"github.com/passkeep/passkeep/internal/service"
	"github.com/passkeep/passkeep/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	if options.SessionSecret == "" {
		zapLogger.Fatal("session secret is required (-s or SESSION_SECRET)")
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Sweep session rows whose tokens have long expired.
	db.StartSessionCleaner(context.Background(), postgresDB,
		time.Hour,
		options.SessionTTL,
		zapLogger,
	)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	sessionRepo := repository.NewPostgresSessionRepository(postgresDB)
	vaultRepo := repository.NewPostgresVaultRepository(postgresDB)

	// Session authority: signs tokens and enforces one session per user.
	authority := session.New([]byte(options.SessionSecret), options.SessionTTL, sessionRepo)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, authority)
	vaultService := service.NewVaultService(vaultRepo)

	// Create HTTP handlers for auth and vault endpoints.
	authHandler := &http.AuthHandler{
		AuthService:  authService,
		CookieSecure: options.CookieSecure,
		Logger:       zapLogger,
	}
	vaultHandler := &http.VaultHandler{
		VaultService: vaultService,
		Logger:       zapLogger,
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, vaultHandler, authority, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

// orDefault returns the first non-zero value (stand-in for cmp.Or,
// which requires Go 1.22+).
func orDefault[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
