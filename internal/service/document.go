package service

import (
	"context"

	"github.com/kwanjau/admissions/internal/apperrors"
	"github.com/kwanjau/admissions/internal/models"
	"github.com/kwanjau/admissions/internal/policy"
)

// DocumentRepository defines the persistence operations needed by the
// document registry.
type DocumentRepository interface {
	// Upsert records document metadata, replacing a prior upload of the
	// same type. An unknown application id yields apperrors.ErrNotFound.
	Upsert(ctx context.Context, applicationID int64, documentType, fileName, storagePath string) (*models.Document, error)
	// ListByApplication returns all documents of an application.
	ListByApplication(ctx context.Context, applicationID int64) ([]models.Document, error)
	// Verify marks a document verified, (nil, nil) when the id is unknown.
	Verify(ctx context.Context, id int64) (*models.Document, error)
}

// DocumentService tracks uploaded-document metadata per application and the
// admin verification flag.
type DocumentService struct {
	docs DocumentRepository
	apps ApplicationRepository
}

// NewDocumentService constructs a DocumentService. The application
// repository backs the ownership checks.
func NewDocumentService(docs DocumentRepository, apps ApplicationRepository) *DocumentService {
	return &DocumentService{docs: docs, apps: apps}
}

// Upload records metadata for an uploaded file. Owner or admin only.
// Uploading the same document type again replaces the previous entry, so at
// most one document exists per (application, type).
func (s *DocumentService) Upload(ctx context.Context, requester policy.Requester, applicationID int64, documentType, fileName, storagePath string) (*models.Document, error) {
	var fields []apperrors.FieldError
	if applicationID <= 0 {
		fields = append(fields, apperrors.FieldError{Field: "applicationId", Message: "is required"})
	}
	if documentType == "" {
		fields = append(fields, apperrors.FieldError{Field: "documentType", Message: "is required"})
	}
	if fileName == "" {
		fields = append(fields, apperrors.FieldError{Field: "fileName", Message: "is required"})
	}
	if storagePath == "" {
		fields = append(fields, apperrors.FieldError{Field: "storagePath", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields...)
	}

	if err := s.authorizeApplication(ctx, requester, applicationID); err != nil {
		return nil, err
	}
	return s.docs.Upsert(ctx, applicationID, documentType, fileName, storagePath)
}

// ListByApplication returns all documents of an application. Owner or admin
// only.
func (s *DocumentService) ListByApplication(ctx context.Context, requester policy.Requester, applicationID int64) ([]models.Document, error) {
	if err := s.authorizeApplication(ctx, requester, applicationID); err != nil {
		return nil, err
	}
	docs, err := s.docs.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// Verify marks a document as checked. Admin only; verifying an already
// verified document is a no-op success.
func (s *DocumentService) Verify(ctx context.Context, requester policy.Requester, id int64) (*models.Document, error) {
	if !policy.CanVerifyDocuments(requester) {
		return nil, apperrors.ErrAuthorization
	}
	doc, err := s.docs.Verify(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}
	return doc, nil
}

// authorizeApplication applies the owner-or-admin rule for document
// operations. For admins the target application must at least exist;
// students must own it.
func (s *DocumentService) authorizeApplication(ctx context.Context, requester policy.Requester, applicationID int64) error {
	if requester.IsAdmin() {
		app, err := s.apps.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if app == nil {
			return apperrors.ErrNotFound
		}
		return nil
	}

	own, err := s.apps.GetByUser(ctx, requester.UserID)
	if err != nil {
		return err
	}
	var ownID int64
	if own != nil {
		ownID = own.ID
	}
	if !policy.CanManageApplication(requester, ownID, applicationID) {
		return apperrors.ErrAuthorization
	}
	return nil
}
