package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresSessionRepository keeps at most one live session row per user.
// The single-row upsert makes "destroy old session, install new session"
// atomic: a racing second login cannot resurrect the replaced session.
type PostgresSessionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSessionRepository creates a repository bound to the given *sql.DB.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{DB: db}
}

// Replace installs tokenID as the user's only session.
func (r *PostgresSessionRepository) Replace(ctx context.Context, userID, tokenID string, issuedAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (user_id, token_id, issued_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			token_id = EXCLUDED.token_id,
			issued_at = EXCLUDED.issued_at
	`, userID, tokenID, issuedAt)
	if err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Live reports whether tokenID is the user's current session.
func (r *PostgresSessionRepository) Live(ctx context.Context, userID, tokenID string) (bool, error) {
	var live bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM sessions WHERE user_id = $1 AND token_id = $2)`,
		userID, tokenID,
	).Scan(&live)
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return live, nil
}

// Delete destroys the user's session if it still matches tokenID.
// Deleting an already-replaced or absent session is not an error.
func (r *PostgresSessionRepository) Delete(ctx context.Context, userID, tokenID string) error {
	_, err := r.DB.ExecContext(
		ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND token_id = $2`,
		userID, tokenID,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
