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

// ApplicationService defines the lifecycle operations required by the
// application handlers.
type ApplicationService interface {
	// SaveDraft validates and saves the user's form; the bool reports
	// whether the application was created by this call.
	SaveDraft(ctx context.Context, userID int64, raw json.RawMessage) (*models.Application, bool, error)
	// GetByUser returns the user's application, (nil, nil) when none exists.
	GetByUser(ctx context.Context, userID int64) (*models.Application, error)
	// SetStatus transitions an application to the given status.
	SetStatus(ctx context.Context, requester policy.Requester, id int64, status models.Status) (*models.Application, error)
	// List returns applications for the admin dashboard.
	List(ctx context.Context, requester policy.Requester, status models.Status, search string) ([]models.Application, error)
}

// ApplicationHandler handles the application lifecycle endpoints.
type ApplicationHandler struct {
	ApplicationService ApplicationService
}

// Save handles POST /api/applications. It creates the caller's draft (201)
// or overwrites its form data (200).
func (h *ApplicationHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req struct {
		FormData json.RawMessage `json:"formData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request"})
		return
	}

	app, created, err := h.ApplicationService.SaveDraft(r.Context(), user.ID, req.FormData)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, app)
}

// GetOwn handles GET /api/applications/user. A user with no saved
// application gets 204, not an error.
func (h *ApplicationHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	app, err := h.ApplicationService.GetByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if app == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// SetStatus handles PATCH /api/applications/{id}/status.
func (h *ApplicationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid application id"})
		return
	}

	var req struct {
		Status models.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request"})
		return
	}

	app, err := h.ApplicationService.SetStatus(r.Context(), policy.RequesterFor(user), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// List handles GET /api/applications?status=&search= for admins.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	apps, err := h.ApplicationService.List(
		r.Context(),
		policy.RequesterFor(user),
		models.Status(r.URL.Query().Get("status")),
		r.URL.Query().Get("search"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}
