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

// foreignKeyViolation is the PostgreSQL error code for a broken FK reference.
const foreignKeyViolation = "23503"

const documentColumns = `id, application_id, document_type, file_name, storage_path, verified, uploaded_at`

// PostgresDocumentRepository implements document-metadata persistence
// against PostgreSQL. The UNIQUE (application_id, document_type) constraint
// gives replace-on-upload semantics: at most one document per type.
type PostgresDocumentRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresDocumentRepository creates a document repository on the given
// connection.
func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{DB: db}
}

// Upsert records uploaded-file metadata for an application. Uploading the
// same document type again replaces the previous entry and clears its
// verified flag. An unknown application id yields apperrors.ErrNotFound.
func (r *PostgresDocumentRepository) Upsert(ctx context.Context, applicationID int64, documentType, fileName, storagePath string) (*models.Document, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO documents (application_id, document_type, file_name, storage_path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (application_id, document_type) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			storage_path = EXCLUDED.storage_path,
			verified = FALSE,
			uploaded_at = now()
		RETURNING `+documentColumns, applicationID, documentType, fileName, storagePath)

	doc, err := scanDocument(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == foreignKeyViolation {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("upsert document: %w", err)
	}
	return doc, nil
}

// ListByApplication returns all documents attached to an application.
func (r *PostgresDocumentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]models.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE application_id = $1 ORDER BY uploaded_at DESC
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Verify marks a document as checked by an admin. Re-verifying is a no-op
// success. Returns (nil, nil) when the id is unknown.
func (r *PostgresDocumentRepository) Verify(ctx context.Context, id int64) (*models.Document, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE documents SET verified = TRUE WHERE id = $1
		RETURNING `+documentColumns, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verify document: %w", err)
	}
	return doc, nil
}

func scanDocument(s scanner) (*models.Document, error) {
	var doc models.Document
	err := s.Scan(&doc.ID, &doc.ApplicationID, &doc.DocumentType,
		&doc.FileName, &doc.StoragePath, &doc.Verified, &doc.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
