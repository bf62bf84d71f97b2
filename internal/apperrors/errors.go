// Package apperrors defines the error taxonomy shared by services and
// HTTP handlers.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthentication means the request carries no valid session.
	ErrAuthentication = errors.New("authentication required")
	// ErrAuthorization means the session is valid but the caller may not
	// perform the operation.
	ErrAuthorization = errors.New("forbidden")
	// ErrNotFound means the referenced application or document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint was hit (duplicate username).
	ErrConflict = errors.New("already exists")
)

// FieldError names a single violated field by its JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field of a rejected payload.
type ValidationError struct {
	Fields []FieldError
}

// NewValidation builds a ValidationError from one or more field errors.
func NewValidation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
