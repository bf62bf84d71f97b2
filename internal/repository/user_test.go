package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/kwanjau/admissions/internal/apperrors"
	"github.com/kwanjau/admissions/internal/models"
)

func setupUserMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresUserRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

const userColumnsQuery = `SELECT id, username, password_hash, role, created_at FROM users`

func TestUserCreate_Success(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, password_hash, role)`)).
		WithArgs("wanjiru@example.com", "hash", "student").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))

	user, err := repo.Create(context.Background(), "wanjiru@example.com", "hash", models.RoleStudent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("expected id 7, got %d", user.ID)
	}
	if user.Role != models.RoleStudent {
		t.Errorf("expected role student, got %s", user.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, password_hash, role)`)).
		WithArgs("taken@example.com", "hash", "student").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), "taken@example.com", "hash", models.RoleStudent)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserGetByUsername_Found(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
		AddRow(int64(3), "admin@university.ac.ke", "hash", "admin", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(userColumnsQuery + ` WHERE username = $1`)).
		WithArgs("admin@university.ac.ke").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "admin@university.ac.ke")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.Role != models.RoleAdmin {
		t.Errorf("expected admin user, got %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserGetByUsername_Absent(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(userColumnsQuery+` WHERE username = $1`)).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}))

	user, err := repo.GetByUsername(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserGetByID_Error(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(userColumnsQuery+` WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnError(errors.New("query failed"))

	_, err := repo.GetByID(context.Background(), 5)
	if err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
