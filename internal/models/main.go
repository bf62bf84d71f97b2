// Package models defines the core data structures for users, applications,
// documents and sessions.
package models

import (
	"encoding/json"
	"time"
)

// Role identifies the authorization level of a user.
type Role string

const (
	// RoleStudent is the default role assigned at registration.
	RoleStudent Role = "student"
	// RoleAdmin marks staff accounts that review applications.
	RoleAdmin Role = "admin"
)

// Status is the lifecycle state of an application.
type Status string

const (
	// StatusDraft is the initial state of a saved application.
	StatusDraft Status = "draft"
	// StatusSubmitted means the applicant handed the form in for review.
	StatusSubmitted Status = "submitted"
	// StatusUnderReview means staff are processing the application.
	StatusUnderReview Status = "under_review"
	// StatusApproved is a final positive decision.
	StatusApproved Status = "approved"
	// StatusRejected is a final negative decision.
	StatusRejected Status = "rejected"
)

// ValidStatus reports whether s is one of the five known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// User represents an account with credentials. Role is fixed at
// registration; there is no promotion path.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Username is the login handle (an email address).
	Username string `json:"username"`
	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string `json:"-"`
	// Role is either "student" or "admin".
	Role Role `json:"role"`
	// CreatedAt is the registration timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// Application holds one applicant's admission form and its review state.
// Each user has at most one application, enforced by the storage layer.
type Application struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Status Status `json:"status"`
	// FormData is the validated form payload stored as JSON.
	FormData  json.RawMessage `json:"formData"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	// SubmittedAt is set the first time status becomes "submitted".
	SubmittedAt *time.Time `json:"submittedAt"`
}

// Document records uploaded-file metadata for an application. At most one
// document exists per (application, type); re-uploading replaces it.
type Document struct {
	ID            int64  `json:"id"`
	ApplicationID int64  `json:"applicationId"`
	DocumentType  string `json:"documentType"`
	FileName      string `json:"fileName"`
	StoragePath   string `json:"storagePath"`
	// Verified is set by an admin once the file has been checked.
	Verified   bool      `json:"verified"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Document type tags known to the portal. The set is extensible; the
// registry accepts any non-empty type tag.
const (
	DocumentNationalID    = "nationalId"
	DocumentKCSEResults   = "kcseResults"
	DocumentKCPEResults   = "kcpeResults"
	DocumentPassportPhoto = "passportPhoto"
)

// Session is a persisted login session keyed by an opaque token.
type Session struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}
