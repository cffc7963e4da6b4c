package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/passkeep/passkeep/internal/models"
)

func setupVaultMock(t *testing.T) (*PostgresVaultRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresVaultRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func testRecord() models.VaultRecord {
	return models.VaultRecord{
		ID:         "r1",
		OwnerEmail: "a@x.com",
		Title:      "Bank",
		Username:   "a",
		URL:        "https://bank.example",
		Secret:     models.SealedSecret{NonceB64: "bm9uY2U=", CiphertextB64: "Y2lwaGVy"},
		Notes:      "main account",
		CreatedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestCreateRecord(t *testing.T) {
	repo, mock, cleanup := setupVaultMock(t)
	defer cleanup()

	rec := testRecord()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO vault_records`)).
		WithArgs(rec.ID, rec.OwnerEmail, rec.Title, rec.Username, rec.URL,
			rec.Secret.NonceB64, rec.Secret.CiphertextB64, rec.Notes, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateRecord(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListByOwner_ScopedAndOrdered(t *testing.T) {
	repo, mock, cleanup := setupVaultMock(t)
	defer cleanup()

	rec := testRecord()
	rows := sqlmock.NewRows([]string{"id", "owner_email", "title", "username", "url",
		"secret_nonce", "secret_ciphertext", "notes", "created_at", "updated_at"}).
		AddRow("r2", rec.OwnerEmail, "Mail", "a", "", "bg==", "Y3Q=", "", rec.CreatedAt.Add(time.Hour), nil).
		AddRow(rec.ID, rec.OwnerEmail, rec.Title, rec.Username, rec.URL,
			rec.Secret.NonceB64, rec.Secret.CiphertextB64, rec.Notes, rec.CreatedAt, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, seq DESC`)).
		WithArgs(rec.OwnerEmail).
		WillReturnRows(rows)

	records, err := repo.ListByOwner(context.Background(), rec.OwnerEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "r2" || records[1].ID != "r1" {
		t.Errorf("unexpected order: %s, %s", records[0].ID, records[1].ID)
	}
	if records[1].Secret.CiphertextB64 != rec.Secret.CiphertextB64 {
		t.Errorf("sealed blob not preserved: %+v", records[1].Secret)
	}
}

func TestUpdateRecord_OwnerScoped(t *testing.T) {
	repo, mock, cleanup := setupVaultMock(t)
	defer cleanup()

	rec := testRecord()
	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND owner_email = $2`)).
		WithArgs(rec.ID, rec.OwnerEmail, rec.Title, rec.Username, rec.URL,
			rec.Secret.NonceB64, rec.Secret.CiphertextB64, rec.Notes, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateRecord(context.Background(), rec.OwnerEmail, rec.ID, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateRecord_NotOwned(t *testing.T) {
	repo, mock, cleanup := setupVaultMock(t)
	defer cleanup()

	rec := testRecord()
	// Record exists but belongs to someone else: zero rows affected,
	// indistinguishable from a nonexistent id.
	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND owner_email = $2`)).
		WithArgs(rec.ID, "b@x.com", rec.Title, rec.Username, rec.URL,
			rec.Secret.NonceB64, rec.Secret.CiphertextB64, rec.Notes, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRecord(context.Background(), "b@x.com", rec.ID, rec)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRecord_OwnerScoped(t *testing.T) {
	repo, mock, cleanup := setupVaultMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM vault_records WHERE id = $1 AND owner_email = $2`)).
		WithArgs("r1", "a@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteRecord(context.Background(), "a@x.com", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteRecord_NotOwned(t *testing.T) {
	repo, mock, cleanup := setupVaultMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM vault_records WHERE id = $1 AND owner_email = $2`)).
		WithArgs("r1", "b@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteRecord(context.Background(), "b@x.com", "r1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByOwner_QueryError(t *testing.T) {
	repo, mock, cleanup := setupVaultMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM vault_records WHERE owner_email = $1`)).
		WithArgs("a@x.com").
		WillReturnError(errors.New("db down"))

	if _, err := repo.ListByOwner(context.Background(), "a@x.com"); err == nil {
		t.Errorf("expected error, got nil")
	}
}
