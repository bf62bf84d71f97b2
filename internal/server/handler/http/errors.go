// Package http provides the HTTP handlers and routing for the admission
// portal API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kwanjau/admissions/internal/apperrors"
)

// errorResponse is the JSON error envelope. Errors is present only for
// validation failures.
type errorResponse struct {
	Message string                 `json:"message"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the service error taxonomy onto HTTP statuses. Unexpected
// errors become a bare 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Validation failed",
			Errors:  verr.Fields,
		})
	case errors.Is(err, apperrors.ErrAuthentication):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	case errors.Is(err, apperrors.ErrAuthorization):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Not found"})
	case errors.Is(err, apperrors.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "Already exists"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}
