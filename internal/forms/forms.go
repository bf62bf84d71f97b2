// Package forms defines the nested admission-form structure and validates
// candidate payloads against it. Validation is exhaustive: every violated
// field is reported at once, by its JSON path.
package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kwanjau/admissions/internal/apperrors"
)

// PersonalInfo identifies the applicant.
type PersonalInfo struct {
	FirstName               string `json:"firstName" validate:"required"`
	MiddleName              string `json:"middleName,omitempty"`
	LastName                string `json:"lastName" validate:"required"`
	NationalIDOrBirthCertNo string `json:"nationalIdOrBirthCertNo" validate:"required"`
	HudumaNo                string `json:"hudumaNo,omitempty"`
	NHIFNo                  string `json:"nhifNo,omitempty"`
	DateOfBirth             string `json:"dateOfBirth" validate:"required"`
	Gender                  string `json:"gender" validate:"required,oneof=male female other"`
	Religion                string `json:"religion,omitempty"`
	Nationality             string `json:"nationality" validate:"required"`
	MaritalStatus           string `json:"maritalStatus" validate:"required,oneof=single married divorced widowed"`
	PhysicalImpairment      bool   `json:"physicalImpairment"`
	ImpairmentDetails       string `json:"impairmentDetails,omitempty"`
}

// ContactInfo holds the applicant's reachable addresses.
type ContactInfo struct {
	PostalAddress string `json:"postalAddress" validate:"required"`
	PostalCode    string `json:"postalCode" validate:"required"`
	Town          string `json:"town" validate:"required"`
	MobilePhone   string `json:"mobilePhone" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	County        string `json:"county" validate:"required"`
}

// FamilyInfo is entirely optional; only numberOfSiblings carries a rule.
type FamilyInfo struct {
	FatherName       string `json:"fatherName,omitempty"`
	FatherOccupation string `json:"fatherOccupation,omitempty"`
	FatherAlive      *bool  `json:"fatherAlive,omitempty"`
	MotherName       string `json:"motherName,omitempty"`
	MotherOccupation string `json:"motherOccupation,omitempty"`
	MotherAlive      *bool  `json:"motherAlive,omitempty"`
	NumberOfSiblings *int   `json:"numberOfSiblings,omitempty" validate:"omitempty,gte=0"`
	SpouseName       string `json:"spouseName,omitempty"`
	SpouseOccupation string `json:"spouseOccupation,omitempty"`
	SpousePhone      string `json:"spousePhone,omitempty"`
}

// ResidenceInfo locates the applicant's home area.
type ResidenceInfo struct {
	PlaceOfBirth         string `json:"placeOfBirth" validate:"required"`
	PermanentResidence   string `json:"permanentResidence" validate:"required"`
	NearestTown          string `json:"nearestTown" validate:"required"`
	Location             string `json:"location" validate:"required"`
	SubCounty            string `json:"subCounty" validate:"required"`
	Constituency         string `json:"constituency" validate:"required"`
	NearestPoliceStation string `json:"nearestPoliceStation" validate:"required"`
}

// EducationInfo records KCSE and KCPE history.
type EducationInfo struct {
	KCSESchool          string `json:"kcseSchool" validate:"required"`
	KCSEIndex           string `json:"kcseIndex" validate:"required"`
	KCSEYear            string `json:"kcseYear" validate:"required"`
	KCSEResults         string `json:"kcseResults" validate:"required"`
	KCPESchool          string `json:"kcpeSchool" validate:"required"`
	KCPEIndex           string `json:"kcpeIndex" validate:"required"`
	KCPEYear            string `json:"kcpeYear" validate:"required"`
	KCPEResults         string `json:"kcpeResults" validate:"required"`
	OtherQualifications string `json:"otherQualifications,omitempty"`
}

// MedicalInfo is a set of condition flags, each with an optional free-text
// detail. Details are filled in by the producing UI when a flag is set and
// are not re-validated here.
type MedicalInfo struct {
	EverAdmitted            bool   `json:"everAdmitted"`
	AdmissionDetails        string `json:"admissionDetails,omitempty"`
	TBHistory               bool   `json:"tbHistory"`
	TBDetails               string `json:"tbDetails,omitempty"`
	FitHistory              bool   `json:"fitHistory"`
	FitDetails              string `json:"fitDetails,omitempty"`
	HeartDiseaseHistory     bool   `json:"heartDiseaseHistory"`
	HeartDiseaseDetails     string `json:"heartDiseaseDetails,omitempty"`
	DigestiveDiseaseHistory bool   `json:"digestiveDiseaseHistory"`
	DigestiveDiseaseDetails string `json:"digestiveDiseaseDetails,omitempty"`
	AllergiesHistory        bool   `json:"allergiesHistory"`
	AllergiesDetails        string `json:"allergiesDetails,omitempty"`
}

// DocumentsChecklist tracks which supporting documents the applicant says
// they have provided.
type DocumentsChecklist struct {
	NationalID    bool `json:"nationalId"`
	KCSEResults   bool `json:"kcseResults"`
	KCPEResults   bool `json:"kcpeResults"`
	PassportPhoto bool `json:"passportPhoto"`
}

// Acceptance records the applicant's acceptance of the admission offer.
// The offer must be accepted for the form to validate at all.
type Acceptance struct {
	AcceptOffer         bool `json:"acceptOffer" validate:"eq=true"`
	ImageReleaseConsent bool `json:"imageReleaseConsent"`
}

// ApplicationForm is the complete admission form. The documents checklist
// keeps its historical wire key "documents".
type ApplicationForm struct {
	PersonalInfo       PersonalInfo       `json:"personalInfo"`
	ContactInfo        ContactInfo        `json:"contactInfo"`
	FamilyInfo         FamilyInfo         `json:"familyInfo"`
	ResidenceInfo      ResidenceInfo      `json:"residenceInfo"`
	EducationInfo      EducationInfo      `json:"educationInfo"`
	MedicalInfo        MedicalInfo        `json:"medicalInfo"`
	DocumentsChecklist DocumentsChecklist `json:"documents"`
	Acceptance         Acceptance         `json:"acceptance"`
}

// FullName derives the applicant's display name from the personal section.
func (f *ApplicationForm) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{f.PersonalInfo.FirstName, f.PersonalInfo.MiddleName, f.PersonalInfo.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names so error paths match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Impairment details are required once the impairment flag is set.
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(PersonalInfo)
		if p.PhysicalImpairment && strings.TrimSpace(p.ImpairmentDetails) == "" {
			sl.ReportError(p.ImpairmentDetails, "impairmentDetails", "ImpairmentDetails", "required", "")
		}
	}, PersonalInfo{})

	return v
}

// Validate parses and validates a raw form payload. On success it returns
// the typed form; on failure it returns a *apperrors.ValidationError listing
// every violated field by JSON path. The form is never partially accepted.
func Validate(raw json.RawMessage) (*ApplicationForm, error) {
	if len(raw) == 0 {
		return nil, apperrors.NewValidation(apperrors.FieldError{
			Field: "formData", Message: "is required",
		})
	}

	var form ApplicationForm
	if err := json.Unmarshal(raw, &form); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, apperrors.NewValidation(apperrors.FieldError{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("must be of type %s", typeErr.Type),
			})
		}
		return nil, apperrors.NewValidation(apperrors.FieldError{
			Field: "formData", Message: "malformed JSON",
		})
	}

	if err := validate.Struct(&form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		fields := make([]apperrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperrors.FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: messageFor(fe),
			})
		}
		return nil, apperrors.NewValidation(fields...)
	}

	return &form, nil
}

// fieldPath strips the top-level struct name from a validator namespace,
// leaving a path like "personalInfo.firstName".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be at least " + fe.Param()
	case "eq":
		if fe.Field() == "acceptOffer" {
			return "must accept offer"
		}
		return "must equal " + fe.Param()
	}
	return "is invalid"
}
