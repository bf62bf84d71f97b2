package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kwanjau/admissions/internal/models"
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

func TestSessionCreate(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	session := &models.Session{
		Token:     "tok-1",
		UserID:    2,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions (token, user_id, expires_at)`)).
		WithArgs(session.Token, session.UserID, session.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSessionGet_Live(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"token", "user_id", "created_at", "expires_at"}).
		AddRow("tok-1", int64(2), now, now.Add(time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions`)).
		WithArgs("tok-1").
		WillReturnRows(rows)

	session, err := repo.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session == nil || session.UserID != 2 {
		t.Errorf("unexpected session: %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSessionGet_ExpiredOrUnknown(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions`)).
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "created_at", "expires_at"}))

	session, err := repo.Get(context.Background(), "stale")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session != nil {
		t.Errorf("expected nil session, got %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSessionDelete_Error(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE token = $1`)).
		WithArgs("tok-1").
		WillReturnError(errors.New("db down"))

	if err := repo.Delete(context.Background(), "tok-1"); err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
