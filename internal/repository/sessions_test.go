package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupSessionMock(t *testing.T) (*PostgresSessionRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresSessionRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestReplaceSession(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	issued := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions (user_id, token_id, issued_at)`)).
		WithArgs("u1", "t1", issued).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Replace(context.Background(), "u1", "t1", issued); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestLiveSession(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM sessions WHERE user_id = $1 AND token_id = $2)`)).
		WithArgs("u1", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	live, err := repo.Live(context.Background(), "u1", "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !live {
		t.Errorf("expected session to be live")
	}
}

func TestLiveSession_Superseded(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM sessions WHERE user_id = $1 AND token_id = $2)`)).
		WithArgs("u1", "old-token").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	live, err := repo.Live(context.Background(), "u1", "old-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live {
		t.Errorf("superseded session must not be live")
	}
}

func TestDeleteSession_Error(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE user_id = $1 AND token_id = $2`)).
		WithArgs("u1", "t1").
		WillReturnError(errors.New("db down"))

	if err := repo.Delete(context.Background(), "u1", "t1"); err == nil {
		t.Errorf("expected error, got nil")
	}
}
