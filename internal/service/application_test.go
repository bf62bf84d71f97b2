package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kwanjau/admissions/internal/apperrors"
	"github.com/kwanjau/admissions/internal/forms"
	"github.com/kwanjau/admissions/internal/models"
	"github.com/kwanjau/admissions/internal/policy"
	"github.com/kwanjau/admissions/internal/service"
)

type mockApplicationRepo struct {
	UpsertDraftFunc  func(ctx context.Context, userID int64, formData []byte) (*models.Application, error)
	GetByUserFunc    func(ctx context.Context, userID int64) (*models.Application, error)
	GetByIDFunc      func(ctx context.Context, id int64) (*models.Application, error)
	UpdateStatusFunc func(ctx context.Context, id int64, status models.Status) (*models.Application, error)
	ListFunc         func(ctx context.Context, status models.Status) ([]models.Application, error)
}

func (m *mockApplicationRepo) UpsertDraft(ctx context.Context, userID int64, formData []byte) (*models.Application, error) {
	return m.UpsertDraftFunc(ctx, userID, formData)
}
func (m *mockApplicationRepo) GetByUser(ctx context.Context, userID int64) (*models.Application, error) {
	return m.GetByUserFunc(ctx, userID)
}
func (m *mockApplicationRepo) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Application, error) {
	return m.UpdateStatusFunc(ctx, id, status)
}
func (m *mockApplicationRepo) List(ctx context.Context, status models.Status) ([]models.Application, error) {
	return m.ListFunc(ctx, status)
}

var (
	student = policy.Requester{UserID: 2, Role: models.RoleStudent}
	admin   = policy.Requester{UserID: 1, Role: models.RoleAdmin}
)

func validForm() *forms.ApplicationForm {
	return &forms.ApplicationForm{
		PersonalInfo: forms.PersonalInfo{
			FirstName:               "Wanjiru",
			LastName:                "Kamau",
			NationalIDOrBirthCertNo: "34567890",
			DateOfBirth:             "2005-03-14",
			Gender:                  "female",
			Nationality:             "Kenyan",
			MaritalStatus:           "single",
		},
		ContactInfo: forms.ContactInfo{
			PostalAddress: "P.O. Box 1234",
			PostalCode:    "00100",
			Town:          "Nairobi",
			MobilePhone:   "+254712345678",
			Email:         "wanjiru@example.com",
			County:        "Nairobi",
		},
		ResidenceInfo: forms.ResidenceInfo{
			PlaceOfBirth:         "Nyeri",
			PermanentResidence:   "Kiambu",
			NearestTown:          "Thika",
			Location:             "Juja",
			SubCounty:            "Juja",
			Constituency:         "Juja",
			NearestPoliceStation: "Juja Police Station",
		},
		EducationInfo: forms.EducationInfo{
			KCSESchool:  "Alliance Girls",
			KCSEIndex:   "20400001001",
			KCSEYear:    "2023",
			KCSEResults: "A-",
			KCPESchool:  "Juja Primary",
			KCPEIndex:   "20400001",
			KCPEYear:    "2019",
			KCPEResults: "398",
		},
		Acceptance: forms.Acceptance{AcceptOffer: true},
	}
}

func validFormJSON(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(validForm())
	if err != nil {
		t.Fatalf("failed to marshal form: %v", err)
	}
	return raw
}

func TestSaveDraft_RejectsInvalidForm(t *testing.T) {
	repoTouched := false
	repo := &mockApplicationRepo{
		GetByUserFunc: func(context.Context, int64) (*models.Application, error) {
			repoTouched = true
			return nil, nil
		},
		UpsertDraftFunc: func(context.Context, int64, []byte) (*models.Application, error) {
			repoTouched = true
			return nil, nil
		},
	}
	svc := service.NewApplicationService(repo)

	_, _, err := svc.SaveDraft(context.Background(), 2, json.RawMessage(`{"personalInfo":{}}`))

	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repoTouched {
		t.Errorf("repository must not be touched when validation fails")
	}
}

func TestSaveDraft_CreatedFlag(t *testing.T) {
	tests := []struct {
		name        string
		existing    *models.Application
		wantCreated bool
	}{
		{"first save creates", nil, true},
		{"later save updates", &models.Application{ID: 10, UserID: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockApplicationRepo{
				GetByUserFunc: func(context.Context, int64) (*models.Application, error) {
					return tt.existing, nil
				},
				UpsertDraftFunc: func(_ context.Context, userID int64, formData []byte) (*models.Application, error) {
					return &models.Application{ID: 10, UserID: userID, Status: models.StatusDraft, FormData: formData}, nil
				},
			}
			svc := service.NewApplicationService(repo)

			app, created, err := svc.SaveDraft(context.Background(), 2, validFormJSON(t))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if created != tt.wantCreated {
				t.Errorf("created = %v, want %v", created, tt.wantCreated)
			}
			if app.ID != 10 {
				t.Errorf("unexpected application: %+v", app)
			}
		})
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	svc := service.NewApplicationService(&mockApplicationRepo{})

	_, err := svc.SetStatus(context.Background(), admin, 10, models.Status("archived"))

	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "status" {
		t.Errorf("unexpected fields: %v", verr.Fields)
	}
}

func TestSetStatus_NonOwnerRefusedForEveryStatus(t *testing.T) {
	repo := &mockApplicationRepo{
		GetByUserFunc: func(context.Context, int64) (*models.Application, error) {
			return &models.Application{ID: 10, UserID: 2}, nil
		},
		UpdateStatusFunc: func(context.Context, int64, models.Status) (*models.Application, error) {
			t.Fatal("status must not be written for a non-owner")
			return nil, nil
		},
	}
	svc := service.NewApplicationService(repo)

	statuses := []models.Status{
		models.StatusDraft,
		models.StatusSubmitted,
		models.StatusUnderReview,
		models.StatusApproved,
		models.StatusRejected,
	}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			_, err := svc.SetStatus(context.Background(), student, 11, status)
			if !errors.Is(err, apperrors.ErrAuthorization) {
				t.Errorf("expected ErrAuthorization, got %v", err)
			}
		})
	}
}

func TestSetStatus_StudentWithoutApplication(t *testing.T) {
	repo := &mockApplicationRepo{
		GetByUserFunc: func(context.Context, int64) (*models.Application, error) {
			return nil, nil
		},
	}
	svc := service.NewApplicationService(repo)

	_, err := svc.SetStatus(context.Background(), student, 10, models.StatusSubmitted)
	if !errors.Is(err, apperrors.ErrAuthorization) {
		t.Errorf("expected ErrAuthorization, got %v", err)
	}
}

func TestSetStatus_OwnerSubmits(t *testing.T) {
	repo := &mockApplicationRepo{
		GetByUserFunc: func(context.Context, int64) (*models.Application, error) {
			return &models.Application{ID: 10, UserID: 2, Status: models.StatusDraft}, nil
		},
		UpdateStatusFunc: func(_ context.Context, id int64, status models.Status) (*models.Application, error) {
			return &models.Application{ID: id, UserID: 2, Status: status}, nil
		},
	}
	svc := service.NewApplicationService(repo)

	app, err := svc.SetStatus(context.Background(), student, 10, models.StatusSubmitted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Status != models.StatusSubmitted {
		t.Errorf("expected submitted, got %s", app.Status)
	}
}

func TestSetStatus_AdminUnknownApplication(t *testing.T) {
	repo := &mockApplicationRepo{
		UpdateStatusFunc: func(context.Context, int64, models.Status) (*models.Application, error) {
			return nil, nil
		},
	}
	svc := service.NewApplicationService(repo)

	_, err := svc.SetStatus(context.Background(), admin, 999, models.StatusApproved)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_StudentRefused(t *testing.T) {
	svc := service.NewApplicationService(&mockApplicationRepo{})

	_, err := svc.List(context.Background(), student, "", "")
	if !errors.Is(err, apperrors.ErrAuthorization) {
		t.Errorf("expected ErrAuthorization, got %v", err)
	}
}

func TestList_InvalidStatusFilter(t *testing.T) {
	svc := service.NewApplicationService(&mockApplicationRepo{})

	_, err := svc.List(context.Background(), admin, models.Status("archived"), "")

	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestList_SearchFiltersByNameAndNationalID(t *testing.T) {
	wanjiru := validForm()
	otieno := validForm()
	otieno.PersonalInfo.FirstName = "Brian"
	otieno.PersonalInfo.LastName = "Otieno"
	otieno.PersonalInfo.NationalIDOrBirthCertNo = "11223344"

	wanjiruData, _ := json.Marshal(wanjiru)
	otienoData, _ := json.Marshal(otieno)

	repo := &mockApplicationRepo{
		ListFunc: func(context.Context, models.Status) ([]models.Application, error) {
			return []models.Application{
				{ID: 10, UserID: 2, FormData: wanjiruData},
				{ID: 11, UserID: 3, FormData: otienoData},
			}, nil
		},
	}
	svc := service.NewApplicationService(repo)

	tests := []struct {
		name    string
		search  string
		wantIDs []int64
	}{
		{"full name, case-insensitive", "WANJIRU kam", []int64{10}},
		{"national id", "11223344", []int64{11}},
		{"no match", "mwangi", []int64{}},
		{"blank matches all", "  ", []int64{10, 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps, err := svc.List(context.Background(), admin, "", tt.search)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ids := make([]int64, 0, len(apps))
			for _, app := range apps {
				ids = append(ids, app.ID)
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("expected ids %v, got %v", tt.wantIDs, ids)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Errorf("expected ids %v, got %v", tt.wantIDs, ids)
				}
			}
		})
	}
}

func TestList_PassesStatusToRepository(t *testing.T) {
	var gotStatus models.Status
	repo := &mockApplicationRepo{
		ListFunc: func(_ context.Context, status models.Status) ([]models.Application, error) {
			gotStatus = status
			return nil, nil
		},
	}
	svc := service.NewApplicationService(repo)

	apps, err := svc.List(context.Background(), admin, models.StatusSubmitted, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStatus != models.StatusSubmitted {
		t.Errorf("expected submitted filter, got %q", gotStatus)
	}
	if apps == nil {
		t.Errorf("expected a non-nil slice even when empty")
	}
}
