package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kwanjau/admissions/internal/models"
)

const applicationColumns = `id, user_id, status, form_data, created_at, updated_at, submitted_at`

// PostgresApplicationRepository implements application persistence against
// PostgreSQL. The UNIQUE constraint on user_id keeps one application per
// user; UpsertDraft leans on it so concurrent saves cannot create two rows.
type PostgresApplicationRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresApplicationRepository creates an application repository on the
// given connection.
func NewPostgresApplicationRepository(db *sql.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{DB: db}
}

// UpsertDraft creates the user's application with status draft, or, when one
// already exists, overwrites its form data and bumps updated_at without
// touching the status.
func (r *PostgresApplicationRepository) UpsertDraft(ctx context.Context, userID int64, formData []byte) (*models.Application, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO applications (user_id, form_data)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			form_data = EXCLUDED.form_data,
			updated_at = now()
		RETURNING `+applicationColumns, userID, formData)
	app, err := scanApplication(row)
	if err != nil {
		return nil, fmt.Errorf("upsert draft: %w", err)
	}
	return app, nil
}

// GetByUser fetches the single application owned by userID. Returns
// (nil, nil) when the user has never saved one.
func (r *PostgresApplicationRepository) GetByUser(ctx context.Context, userID int64) (*models.Application, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+applicationColumns+` FROM applications WHERE user_id = $1
	`, userID)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application by user: %w", err)
	}
	return app, nil
}

// GetByID fetches an application by id. Returns (nil, nil) when absent.
func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+applicationColumns+` FROM applications WHERE id = $1
	`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// UpdateStatus sets the status and updated_at of an application.
// submitted_at is written only on a transition to "submitted" and is never
// cleared afterwards. Returns (nil, nil) when the id is unknown.
func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Application, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE applications SET
			status = $2,
			updated_at = now(),
			submitted_at = CASE WHEN $2 = 'submitted' THEN now() ELSE submitted_at END
		WHERE id = $1
		RETURNING `+applicationColumns, id, string(status))
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return app, nil
}

// List returns all applications, optionally narrowed to one status, most
// recently updated first.
func (r *PostgresApplicationRepository) List(ctx context.Context, status models.Status) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY updated_at DESC`
	args := []any{}
	if status != "" {
		query = `SELECT ` + applicationColumns + ` FROM applications WHERE status = $1 ORDER BY updated_at DESC`
		args = append(args, string(status))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(s scanner) (*models.Application, error) {
	var (
		app         models.Application
		submittedAt sql.NullTime
	)
	err := s.Scan(&app.ID, &app.UserID, &app.Status, &app.FormData,
		&app.CreatedAt, &app.UpdatedAt, &submittedAt)
	if err != nil {
		return nil, err
	}
	if submittedAt.Valid {
		app.SubmittedAt = &submittedAt.Time
	}
	return &app, nil
}
