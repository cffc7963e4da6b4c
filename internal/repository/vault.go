package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/passkeep/passkeep/internal/models"
)

// PostgresVaultRepository implements vault record persistence against a
// PostgreSQL database. Every read, update and delete predicate includes the
// owner email next to the record id: an id-only lookup is a bug, not an
// optimization, so a record that belongs to someone else is reported exactly
// like a record that never existed.
type PostgresVaultRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresVaultRepository creates a repository bound to the given *sql.DB.
func NewPostgresVaultRepository(db *sql.DB) *PostgresVaultRepository {
	return &PostgresVaultRepository{DB: db}
}

// CreateRecord inserts a new vault record owned by rec.OwnerEmail.
func (r *PostgresVaultRepository) CreateRecord(ctx context.Context, rec models.VaultRecord) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO vault_records (id, owner_email, title, username, url, secret_nonce, secret_ciphertext, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.OwnerEmail, rec.Title, rec.Username, rec.URL,
		rec.Secret.NonceB64, rec.Secret.CiphertextB64, rec.Notes, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// ListByOwner returns all records owned by ownerEmail, most recently created
// first; creation-time ties resolve by insertion order.
func (r *PostgresVaultRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]models.VaultRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, owner_email, title, username, url, secret_nonce, secret_ciphertext, notes, created_at, updated_at
		FROM vault_records WHERE owner_email = $1
		ORDER BY created_at DESC, seq DESC
	`, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []models.VaultRecord
	for rows.Next() {
		var rec models.VaultRecord
		var updatedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.OwnerEmail, &rec.Title, &rec.Username, &rec.URL,
			&rec.Secret.NonceB64, &rec.Secret.CiphertextB64, &rec.Notes, &rec.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			rec.UpdatedAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// UpdateRecord rewrites the mutable fields of the record identified by
// (id, ownerEmail). The owner column is never part of the SET list. Zero
// affected rows means ErrNotFound, whether the id is absent or foreign.
func (r *PostgresVaultRepository) UpdateRecord(ctx context.Context, ownerEmail, id string, rec models.VaultRecord) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE vault_records
		SET title = $3, username = $4, url = $5, secret_nonce = $6, secret_ciphertext = $7, notes = $8, updated_at = $9
		WHERE id = $1 AND owner_email = $2
	`, id, ownerEmail, rec.Title, rec.Username, rec.URL,
		rec.Secret.NonceB64, rec.Secret.CiphertextB64, rec.Notes, time.Now())
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecord removes the record identified by (id, ownerEmail). Zero
// affected rows means ErrNotFound, whether the id is absent or foreign.
func (r *PostgresVaultRepository) DeleteRecord(ctx context.Context, ownerEmail, id string) error {
	res, err := r.DB.ExecContext(
		ctx,
		`DELETE FROM vault_records WHERE id = $1 AND owner_email = $2`,
		id, ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
