// Package repository provides PostgreSQL persistence for users,
// applications, documents and sessions.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kwanjau/admissions/internal/apperrors"
	"github.com/kwanjau/admissions/internal/models"
)

// uniqueViolation is the PostgreSQL error code for a broken UNIQUE constraint.
const uniqueViolation = "23505"

// PostgresUserRepository implements user persistence against PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a user repository on the given connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// Create inserts a new user and returns the stored record. A duplicate
// username yields apperrors.ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, username, passwordHash, string(role)).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetByID fetches a user by id. Returns (nil, nil) when no such user exists.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, `
		SELECT id, username, password_hash, role, created_at FROM users WHERE id = $1
	`, id)
}

// GetByUsername fetches a user by login handle. Returns (nil, nil) when no
// such user exists.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.get(ctx, `
		SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1
	`, username)
}

func (r *PostgresUserRepository) get(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
