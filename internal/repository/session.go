package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kwanjau/admissions/internal/models"
)

// PostgresSessionRepository persists login sessions keyed by token.
type PostgresSessionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSessionRepository creates a session repository on the given
// connection.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{DB: db}
}

// Create stores a new session.
func (r *PostgresSessionRepository) Create(ctx context.Context, session *models.Session) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)
	`, session.Token, session.UserID, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Get fetches a live session by token. Expired or unknown tokens return
// (nil, nil).
func (r *PostgresSessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := r.DB.QueryRowContext(ctx, `
		SELECT token, user_id, created_at, expires_at FROM sessions
		WHERE token = $1 AND expires_at > now()
	`, token).Scan(&session.Token, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (r *PostgresSessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
