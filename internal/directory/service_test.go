package directory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/internal/notify"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

func newTestService() *Service {
	return NewService(NewInMemoryRepository(), logging.Default(), "test-secret", time.Hour)
}

func intPtr(v int) *int { return &v }

func doctorRequest() *RegisterRequest {
	return &RegisterRequest{
		Email:           "house@example.com",
		Password:        "lupus-is-never-it",
		FirstName:       "Gregory",
		LastName:        "House",
		Role:            identity.RoleDoctor,
		Specialization:  SpecCardiologist,
		LicenseNumber:   "123456",
		ExperienceYears: intPtr(15),
		HospitalName:    "Princeton General",
	}
}

func patientRequest() *RegisterRequest {
	return &RegisterRequest{
		Email:     "jane@example.com",
		Password:  "correct-horse",
		FirstName: "Jane",
		LastName:  "Smith",
		Role:      identity.RolePatient,
	}
}

func TestRegisterDoctorStartsPending(t *testing.T) {
	svc := newTestService()

	account, err := svc.Register(context.Background(), doctorRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Status != identity.StatusPending {
		t.Errorf("expected pending status, got %s", account.Status)
	}
	if account.Specialization != SpecCardiologist {
		t.Errorf("expected specialization to be stored, got %q", account.Specialization)
	}
}

func TestRegisterPatientStartsApproved(t *testing.T) {
	svc := newTestService()

	account, err := svc.Register(context.Background(), patientRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Status != identity.StatusApproved {
		t.Errorf("expected approved status, got %s", account.Status)
	}
}

func TestRegisterRejectsNonNumericLicense(t *testing.T) {
	svc := newTestService()

	req := doctorRequest()
	req.LicenseNumber = "12AB"

	_, err := svc.Register(context.Background(), req)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !hasFieldError(verr, "license_number") {
		t.Errorf("expected license_number field error, got %v", verr)
	}

	// Rejected registration must not create an account.
	if _, authErr := svc.repo.GetByEmail(context.Background(), req.Email); !errors.Is(authErr, ErrAccountNotFound) {
		t.Errorf("expected no account persisted, got %v", authErr)
	}
}

func TestRegisterDoctorFieldValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
		field  string
	}{
		{"missing specialization", func(r *RegisterRequest) { r.Specialization = "" }, "specialization"},
		{"unknown specialization", func(r *RegisterRequest) { r.Specialization = "astrologist" }, "specialization"},
		{"license too short", func(r *RegisterRequest) { r.LicenseNumber = "123" }, "license_number"},
		{"license too long", func(r *RegisterRequest) { r.LicenseNumber = "1234567890123" }, "license_number"},
		{"missing experience", func(r *RegisterRequest) { r.ExperienceYears = nil }, "experience_years"},
		{"negative experience", func(r *RegisterRequest) { r.ExperienceYears = intPtr(-1) }, "experience_years"},
		{"hospital too short", func(r *RegisterRequest) { r.HospitalName = "AB" }, "hospital_name"},
		{"hospital purely numeric", func(r *RegisterRequest) { r.HospitalName = "123456" }, "hospital_name"},
		{"hospital purely symbolic", func(r *RegisterRequest) { r.HospitalName = "!!!***" }, "hospital_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			req := doctorRequest()
			tt.mutate(req)

			_, err := svc.Register(context.Background(), req)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !hasFieldError(verr, tt.field) {
				t.Errorf("expected %s field error, got %v", tt.field, verr)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), patientRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Register(context.Background(), patientRequest()); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticatePendingDoctorGate(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), doctorRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Correct credentials on a pending doctor must surface the approval gate,
	// not bad-credentials.
	_, _, err := svc.Authenticate(context.Background(), "house@example.com", "lupus-is-never-it")
	if !errors.Is(err, ErrPendingApproval) {
		t.Fatalf("expected ErrPendingApproval, got %v", err)
	}

	_, _, err = svc.Authenticate(context.Background(), "house@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateApprovedDoctor(t *testing.T) {
	svc := newTestService()

	account, err := svc.Register(context.Background(), doctorRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	admin := identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin, Status: identity.StatusApproved}
	if err := svc.SetApproval(context.Background(), admin, account.ID, identity.StatusApproved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, token, err := svc.Authenticate(context.Background(), "house@example.com", "lupus-is-never-it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	actor, err := identity.Parse(token, "test-secret")
	if err != nil {
		t.Fatalf("token did not parse: %v", err)
	}
	if actor.Role != identity.RoleDoctor || actor.Status != identity.StatusApproved {
		t.Errorf("unexpected actor claims: %+v", actor)
	}
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := newTestService()
	_, _, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSetApprovalIdempotent(t *testing.T) {
	svc := newTestService()

	account, err := svc.Register(context.Background(), doctorRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	admin := identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin, Status: identity.StatusApproved}
	for i := 0; i < 2; i++ {
		if err := svc.SetApproval(context.Background(), admin, account.ID, identity.StatusApproved); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}

	updated, err := svc.Get(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != identity.StatusApproved {
		t.Errorf("expected approved, got %s", updated.Status)
	}
}

func TestSetApprovalRequiresAdmin(t *testing.T) {
	svc := newTestService()

	account, err := svc.Register(context.Background(), doctorRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doctor := identity.Actor{ID: uuid.New(), Role: identity.RoleDoctor, Status: identity.StatusApproved}
	if err := svc.SetApproval(context.Background(), doctor, account.ID, identity.StatusApproved); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestSetApprovalRejectsBogusDecision(t *testing.T) {
	svc := newTestService()

	account, err := svc.Register(context.Background(), doctorRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	admin := identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin, Status: identity.StatusApproved}
	if err := svc.SetApproval(context.Background(), admin, account.ID, identity.StatusPending); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
}

func TestApprovedDoctorsFilter(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	admin := identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin, Status: identity.StatusApproved}

	cardio, err := svc.Register(ctx, doctorRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetApproval(ctx, admin, cardio.ID, identity.StatusApproved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	derm := doctorRequest()
	derm.Email = "derm@example.com"
	derm.Specialization = SpecDermatologist
	if _, err := svc.Register(ctx, derm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Dermatologist stays pending; must not appear in approved listings.

	doctors, err := svc.ApprovedDoctors(ctx, SpecCardiologist)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) != 1 || doctors[0].ID != cardio.ID {
		t.Fatalf("expected only the approved cardiologist, got %d doctors", len(doctors))
	}

	// Empty candidate set is a valid result, not an error.
	doctors, err = svc.ApprovedDoctors(ctx, SpecDentist)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) != 0 {
		t.Fatalf("expected no dentists, got %d", len(doctors))
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "admin@example.com", "admin-password", "Admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Second call is a no-op.
	if err := svc.EnsureAdmin(ctx, "admin@example.com", "admin-password", "Admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _, err := svc.Authenticate(ctx, "admin@example.com", "admin-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Role != identity.RoleAdmin {
		t.Errorf("expected admin role, got %s", account.Role)
	}
}

func hasFieldError(verr ValidationError, field string) bool {
	for _, fe := range verr {
		if fe.Field == field {
			return true
		}
	}
	return false
}

type captureSender struct {
	messages []notify.EmailMessage
}

func (c *captureSender) Send(_ context.Context, msg notify.EmailMessage) error {
	c.messages = append(c.messages, msg)
	return nil
}

func TestSetApprovalSendsNotification(t *testing.T) {
	sender := &captureSender{}
	svc := newTestService().WithNotifier(notify.NewNotifier(sender, logging.Default()))

	account, err := svc.Register(context.Background(), doctorRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	admin := identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin, Status: identity.StatusApproved}
	if err := svc.SetApproval(context.Background(), admin, account.ID, identity.StatusApproved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.messages) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.messages))
	}
	msg := sender.messages[0]
	if msg.To != account.Email {
		t.Errorf("expected email to %s, got %s", account.Email, msg.To)
	}
	if !strings.Contains(msg.Subject, "approved") {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
}
