package directory

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/identity"
)

// Specialization is a medical specialty a doctor practices and a category a
// report can be filed under.
type Specialization string

const (
	SpecCardiologist  Specialization = "cardiologist"
	SpecPediatrician  Specialization = "pediatrician"
	SpecGeneral       Specialization = "general"
	SpecOrthopedic    Specialization = "orthopedic"
	SpecNeurologist   Specialization = "neurologist"
	SpecDermatologist Specialization = "dermatologist"
	SpecPsychiatrist  Specialization = "psychiatrist"
	SpecDentist       Specialization = "dentist"
)

// Specializations lists every supported specialty.
func Specializations() []Specialization {
	return []Specialization{
		SpecCardiologist,
		SpecPediatrician,
		SpecGeneral,
		SpecOrthopedic,
		SpecNeurologist,
		SpecDermatologist,
		SpecPsychiatrist,
		SpecDentist,
	}
}

// Display returns the human-readable name of the specialty.
func (s Specialization) Display() string {
	switch s {
	case SpecCardiologist:
		return "Cardiology"
	case SpecPediatrician:
		return "Pediatrics"
	case SpecGeneral:
		return "General Medicine"
	case SpecOrthopedic:
		return "Orthopedics"
	case SpecNeurologist:
		return "Neurology"
	case SpecDermatologist:
		return "Dermatology"
	case SpecPsychiatrist:
		return "Psychiatry"
	case SpecDentist:
		return "Dentistry"
	}
	return string(s)
}

// Valid reports whether the specialization is a known specialty.
func (s Specialization) Valid() bool {
	for _, known := range Specializations() {
		if s == known {
			return true
		}
	}
	return false
}

// Account is a registered user together with its profile attributes.
// Profile data is written at registration time; an account without profile
// attributes is not representable.
type Account struct {
	ID           uuid.UUID               `json:"id"`
	Email        string                  `json:"email"`
	FirstName    string                  `json:"first_name"`
	LastName     string                  `json:"last_name"`
	PasswordHash string                  `json:"-"`
	Role         identity.Role           `json:"role"`
	Status       identity.ApprovalStatus `json:"status"`
	Phone        string                  `json:"phone,omitempty"`
	Address      string                  `json:"address,omitempty"`
	Bio          string                  `json:"bio,omitempty"`

	// Doctor-specific profile fields.
	Specialization  Specialization `json:"specialization,omitempty"`
	LicenseNumber   string         `json:"license_number,omitempty"`
	ExperienceYears int            `json:"experience_years,omitempty"`
	HospitalName    string         `json:"hospital_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// FullName returns the display name used in documents and notifications.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Actor converts the account into the identity attached to requests.
func (a *Account) Actor() identity.Actor {
	return identity.Actor{ID: a.ID, Role: a.Role, Status: a.Status, Name: a.FullName()}
}

// FieldError reports a validation failure on a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates field-level failures for one request.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "invalid registration: " + strings.Join(msgs, "; ")
}

// RegisterRequest carries the inputs for creating an account.
type RegisterRequest struct {
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Role      identity.Role `json:"role"`
	Phone     string        `json:"phone"`
	Address   string        `json:"address"`
	Bio       string        `json:"bio"`

	Specialization  Specialization `json:"specialization"`
	LicenseNumber   string         `json:"license_number"`
	ExperienceYears *int           `json:"experience_years"`
	HospitalName    string         `json:"hospital_name"`
}

const (
	minPasswordLength = 8
	licenseMinDigits  = 4
	licenseMaxDigits  = 12
	hospitalMinLen    = 3
	hospitalMaxLen    = 100
)

// Validate checks the request field by field. Doctor registrations carry
// mandatory credential fields that patients do not.
func (r *RegisterRequest) Validate() error {
	var errs ValidationError

	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		errs = append(errs, FieldError{Field: "email", Message: "a valid email address is required"})
	}
	if len(r.Password) < minPasswordLength {
		errs = append(errs, FieldError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)})
	}
	if strings.TrimSpace(r.FirstName) == "" {
		errs = append(errs, FieldError{Field: "first_name", Message: "first name is required"})
	}
	if r.Role != identity.RolePatient && r.Role != identity.RoleDoctor {
		errs = append(errs, FieldError{Field: "role", Message: "role must be patient or doctor"})
	}

	if r.Role == identity.RoleDoctor {
		if r.Specialization == "" {
			errs = append(errs, FieldError{Field: "specialization", Message: "specialization is required for doctors"})
		} else if !r.Specialization.Valid() {
			errs = append(errs, FieldError{Field: "specialization", Message: "unknown specialization"})
		}
		if msg := validateLicenseNumber(r.LicenseNumber); msg != "" {
			errs = append(errs, FieldError{Field: "license_number", Message: msg})
		}
		if r.ExperienceYears == nil {
			errs = append(errs, FieldError{Field: "experience_years", Message: "years of experience is required for doctors"})
		} else if *r.ExperienceYears < 0 {
			errs = append(errs, FieldError{Field: "experience_years", Message: "years of experience cannot be negative"})
		}
		if msg := validateHospitalName(r.HospitalName); msg != "" {
			errs = append(errs, FieldError{Field: "hospital_name", Message: msg})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateLicenseNumber(license string) string {
	license = strings.TrimSpace(license)
	if license == "" {
		return "license number is required for doctors"
	}
	if len(license) < licenseMinDigits || len(license) > licenseMaxDigits {
		return fmt.Sprintf("license number must be %d to %d digits", licenseMinDigits, licenseMaxDigits)
	}
	for _, r := range license {
		if r < '0' || r > '9' {
			return "license number must contain digits only"
		}
	}
	return ""
}

func validateHospitalName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "hospital name is required for doctors"
	}
	if len(name) < hospitalMinLen || len(name) > hospitalMaxLen {
		return fmt.Sprintf("hospital name must be %d to %d characters", hospitalMinLen, hospitalMaxLen)
	}
	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return "hospital name must contain letters"
	}
	return ""
}
