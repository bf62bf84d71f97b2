package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kwanjau/admissions/internal/apperrors"
	"github.com/kwanjau/admissions/internal/forms"
	"github.com/kwanjau/admissions/internal/models"
	"github.com/kwanjau/admissions/internal/policy"
)

// ApplicationRepository defines the persistence operations needed by the
// application lifecycle service.
type ApplicationRepository interface {
	// UpsertDraft creates the user's draft or overwrites its form data.
	UpsertDraft(ctx context.Context, userID int64, formData []byte) (*models.Application, error)
	// GetByUser fetches the user's application, (nil, nil) when none exists.
	GetByUser(ctx context.Context, userID int64) (*models.Application, error)
	// GetByID fetches an application by id, (nil, nil) when absent.
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	// UpdateStatus sets a new status, (nil, nil) when the id is unknown.
	UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Application, error)
	// List returns applications, optionally narrowed to one status, most
	// recently updated first.
	List(ctx context.Context, status models.Status) ([]models.Application, error)
}

// ApplicationService owns the application lifecycle: draft saves, status
// transitions and the admin listing.
type ApplicationService struct {
	repo ApplicationRepository
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(repo ApplicationRepository) *ApplicationService {
	return &ApplicationService{repo: repo}
}

// SaveDraft validates the raw form payload and saves it as the user's
// application. A first save creates the application in draft; later saves
// overwrite the form wholesale without touching the status. The returned
// bool reports whether the application was created by this call.
func (s *ApplicationService) SaveDraft(ctx context.Context, userID int64, raw json.RawMessage) (*models.Application, bool, error) {
	form, err := forms.Validate(raw)
	if err != nil {
		return nil, false, err
	}

	normalized, err := json.Marshal(form)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	app, err := s.repo.UpsertDraft(ctx, userID, normalized)
	if err != nil {
		return nil, false, err
	}
	return app, existing == nil, nil
}

// GetByUser returns the user's application, or (nil, nil) when they have
// never saved one. An absent application is a result, not an error.
func (s *ApplicationService) GetByUser(ctx context.Context, userID int64) (*models.Application, error) {
	return s.repo.GetByUser(ctx, userID)
}

// SetStatus moves an application to any of the five statuses. The machine
// is deliberately loose: authorized callers may set any status from any
// status, forward or backward. Authorization is checked before any write;
// submitted_at is recorded on a transition to submitted.
func (s *ApplicationService) SetStatus(ctx context.Context, requester policy.Requester, id int64, status models.Status) (*models.Application, error) {
	if !models.ValidStatus(status) {
		return nil, apperrors.NewValidation(apperrors.FieldError{
			Field:   "status",
			Message: "must be one of: draft, submitted, under_review, approved, rejected",
		})
	}

	if !requester.IsAdmin() {
		own, err := s.repo.GetByUser(ctx, requester.UserID)
		if err != nil {
			return nil, err
		}
		var ownID int64
		if own != nil {
			ownID = own.ID
		}
		if !policy.CanManageApplication(requester, ownID, id) {
			return nil, apperrors.ErrAuthorization
		}
	}

	app, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperrors.ErrNotFound
	}
	return app, nil
}

// List returns applications for the admin dashboard, most recently updated
// first. status narrows to an exact match when set; search matches
// case-insensitively against the applicant's full name or national id.
// Both conditions apply when both are present. Non-admin requesters are
// refused.
func (s *ApplicationService) List(ctx context.Context, requester policy.Requester, status models.Status, search string) ([]models.Application, error) {
	if !policy.CanListApplications(requester) {
		return nil, apperrors.ErrAuthorization
	}
	if status != "" && !models.ValidStatus(status) {
		return nil, apperrors.NewValidation(apperrors.FieldError{
			Field:   "status",
			Message: "must be one of: draft, submitted, under_review, approved, rejected",
		})
	}

	apps, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		if apps == nil {
			apps = []models.Application{}
		}
		return apps, nil
	}

	matched := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		if matchesSearch(&app, term) {
			matched = append(matched, app)
		}
	}
	return matched, nil
}

// matchesSearch applies the identity search over the stored form payload.
func matchesSearch(app *models.Application, term string) bool {
	var form forms.ApplicationForm
	if err := json.Unmarshal(app.FormData, &form); err != nil {
		return false
	}
	if strings.Contains(strings.ToLower(form.FullName()), term) {
		return true
	}
	return strings.Contains(strings.ToLower(form.PersonalInfo.NationalIDOrBirthCertNo), term)
}
