package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kwanjau/admissions/internal/middleware"
	"github.com/kwanjau/admissions/internal/models"
	"github.com/kwanjau/admissions/internal/policy"
)

// DocumentService defines the registry operations required by the document
// handlers.
type DocumentService interface {
	// Upload records uploaded-file metadata for an application.
	Upload(ctx context.Context, requester policy.Requester, applicationID int64, documentType, fileName, storagePath string) (*models.Document, error)
	// ListByApplication returns all documents of an application.
	ListByApplication(ctx context.Context, requester policy.Requester, applicationID int64) ([]models.Document, error)
	// Verify marks a document as checked by an admin.
	Verify(ctx context.Context, requester policy.Requester, id int64) (*models.Document, error)
}

// DocumentHandler handles the document registry endpoints.
type DocumentHandler struct {
	DocumentService DocumentService
}

// Upload handles POST /api/documents.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req struct {
		ApplicationID int64  `json:"applicationId"`
		DocumentType  string `json:"documentType"`
		FileName      string `json:"fileName"`
		StoragePath   string `json:"storagePath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request"})
		return
	}

	doc, err := h.DocumentService.Upload(r.Context(), policy.RequesterFor(user),
		req.ApplicationID, req.DocumentType, req.FileName, req.StoragePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /api/documents/{applicationId}.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	applicationID, err := strconv.ParseInt(chi.URLParam(r, "applicationId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid application id"})
		return
	}

	docs, err := h.DocumentService.ListByApplication(r.Context(), policy.RequesterFor(user), applicationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Verify handles PATCH /api/documents/{id}/verify.
func (h *DocumentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid document id"})
		return
	}

	doc, err := h.DocumentService.Verify(r.Context(), policy.RequesterFor(user), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
