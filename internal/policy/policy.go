// Package policy centralizes every role and ownership decision so that all
// routes answer authorization questions the same way.
package policy

import "github.com/kwanjau/admissions/internal/models"

// Requester identifies the authenticated caller of an operation.
type Requester struct {
	UserID int64
	Role   models.Role
}

// RequesterFor builds a Requester from an authenticated user.
func RequesterFor(user *models.User) Requester {
	return Requester{UserID: user.ID, Role: user.Role}
}

// IsAdmin reports whether the requester holds the admin role.
func (r Requester) IsAdmin() bool {
	return r.Role == models.RoleAdmin
}

// CanManageApplication reports whether the requester may act on the
// application with id targetID (change its status, attach or list its
// documents). ownAppID is the id of the requester's own application, zero
// when they have none. Admins may act on any application; students only on
// their own.
func CanManageApplication(r Requester, ownAppID, targetID int64) bool {
	if r.IsAdmin() {
		return true
	}
	return ownAppID != 0 && ownAppID == targetID
}

// CanListApplications reports whether the requester may list and filter
// applications across all users.
func CanListApplications(r Requester) bool {
	return r.IsAdmin()
}

// CanVerifyDocuments reports whether the requester may mark documents as
// verified.
func CanVerifyDocuments(r Requester) bool {
	return r.IsAdmin()
}
