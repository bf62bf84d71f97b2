// Package service provides the business logic for accounts, application
// lifecycle and the document registry, delegating persistence to
// repository interfaces.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kwanjau/admissions/internal/apperrors"
	"github.com/kwanjau/admissions/internal/models"
)

// UserRepository defines the user persistence operations required by the
// authentication service.
type UserRepository interface {
	// Create stores a new user. A duplicate username yields
	// apperrors.ErrConflict.
	Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error)
	// GetByID fetches a user by id, (nil, nil) when absent.
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// GetByUsername fetches a user by login handle, (nil, nil) when absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionRepository defines the session persistence operations required by
// the authentication service.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// Get fetches a live session, (nil, nil) when unknown or expired.
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

// credentials carries the registration payload rules: the handle must be an
// email address, the password at least eight characters.
type credentials struct {
	Username string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

var credValidate = validator.New()

// AuthService implements registration, login and session management.
type AuthService struct {
	users      UserRepository
	sessions   SessionRepository
	sessionTTL time.Duration
}

// NewAuthService constructs an AuthService. sessionTTL bounds how long a
// login stays valid.
func NewAuthService(users UserRepository, sessions SessionRepository, sessionTTL time.Duration) *AuthService {
	return &AuthService{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

// Register creates a student account. The username must be a valid email
// address and the password at least eight characters; violations come back
// as a ValidationError, a taken username as ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := credValidate.Struct(credentials{Username: username, Password: password}); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		fields := make([]apperrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.StructField() {
			case "Username":
				fields = append(fields, apperrors.FieldError{
					Field: "username", Message: "must be a valid email address",
				})
			case "Password":
				fields = append(fields, apperrors.FieldError{
					Field: "password", Message: "must be at least 8 characters",
				})
			}
		}
		return nil, apperrors.NewValidation(fields...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.users.Create(ctx, username, string(hash), models.RoleStudent)
}

// Login verifies the credentials and returns the user. Unknown usernames
// and wrong passwords are indistinguishable: both yield ErrAuthentication.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrAuthentication
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrAuthentication
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrAuthentication
	}
	return user, nil
}

// CreateSession opens a new session for the user and returns it.
func (s *AuthService) CreateSession(ctx context.Context, userID int64) (*models.Session, error) {
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UserBySession resolves a session token to its user. Missing, expired or
// orphaned sessions yield ErrAuthentication.
func (s *AuthService) UserBySession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.ErrAuthentication
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.ErrAuthentication
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrAuthentication
	}
	return user, nil
}

// Logout removes the session. Logging out an unknown token succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
