package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kwanjau/admissions/internal/middleware"
	"github.com/kwanjau/admissions/internal/models"
)

// AuthService defines the account and session operations required by the
// HTTP handlers.
type AuthService interface {
	// Register creates a student account.
	Register(ctx context.Context, username, password string) (*models.User, error)
	// Login verifies credentials and returns the user.
	Login(ctx context.Context, username, password string) (*models.User, error)
	// CreateSession opens a session for the user.
	CreateSession(ctx context.Context, userID int64) (*models.Session, error)
	// Logout removes a session by token.
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles registration, login, logout and the current-user
// endpoint.
type AuthHandler struct {
	AuthService AuthService
}

// credentialsRequest is the JSON payload for registration and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/register. On success it opens a session and
// responds 201 with the created user.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request"})
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.openSession(w, r, user); err != nil {
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/login. On success it opens a session and responds
// 200 with the user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request"})
		return
	}

	user, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.openSession(w, r, user); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/logout. It deletes the session and expires the
// cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// CurrentUser handles GET /api/user, returning the authenticated user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) openSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session, err := h.AuthService.CreateSession(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
