package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carebridge/clinic-platform/internal/authz"
	"github.com/carebridge/clinic-platform/internal/directory"
	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/internal/notify"
	"github.com/carebridge/clinic-platform/internal/observability/metrics"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

var appointmentsTracer = otel.Tracer("clinic.internal.appointments")

// AccountDirectory resolves accounts for booking checks and notifications.
type AccountDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*directory.Account, error)
}

// AvailabilityChecker decides whether a doctor can be booked at a time.
type AvailabilityChecker interface {
	IsBookable(ctx context.Context, doctorID uuid.UUID, requestedAt, now time.Time) error
}

// Service books appointments and drives their lifecycle.
type Service struct {
	repo     Repository
	accounts AccountDirectory
	checker  AvailabilityChecker
	notifier *notify.Notifier
	metrics  *metrics.ClinicMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewService constructs an appointments service.
func NewService(repo Repository, accounts AccountDirectory, checker AvailabilityChecker, notifier *notify.Notifier, m *metrics.ClinicMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if accounts == nil {
		panic("appointments: account directory required")
	}
	if checker == nil {
		panic("appointments: availability checker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		accounts: accounts,
		checker:  checker,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Book creates a pending appointment for the acting patient. Whatever status
// the client asked for is ignored.
func (s *Service) Book(ctx context.Context, actor identity.Actor, req BookRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.patient_id", actor.ID.String()),
		attribute.String("clinic.doctor_id", req.DoctorID.String()),
	)

	if actor.Role != identity.RolePatient {
		return nil, ErrPatientsOnly
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrReasonRequired
	}

	doctor, err := s.accounts.Get(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, directory.ErrAccountNotFound) {
			return nil, ErrDoctorNotAvailable
		}
		span.RecordError(err)
		return nil, err
	}
	if doctor.Role != identity.RoleDoctor || doctor.Status != identity.StatusApproved {
		return nil, ErrDoctorNotAvailable
	}

	if err := s.checker.IsBookable(ctx, req.DoctorID, req.When, s.now()); err != nil {
		s.metrics.ObserveBooking("rejected")
		return nil, err
	}

	appt := &Appointment{
		ID:        uuid.New(),
		PatientID: actor.ID,
		DoctorID:  req.DoctorID,
		When:      req.When.UTC(),
		Status:    StatusPending,
		Reason:    strings.TrimSpace(req.Reason),
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		s.metrics.ObserveBooking("rejected")
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveBooking("accepted")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID, "patient_id", actor.ID, "doctor_id", req.DoctorID,
		"at", appt.When.Format(time.RFC3339))
	s.notifier.AppointmentBooked(ctx, doctor.Email, doctor.FullName(), actor.Name, appt.When)
	return appt, nil
}

// Get returns one appointment if the actor may see it.
func (s *Service) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := authz.Resource{PatientID: appt.PatientID, DoctorID: appt.DoctorID}
	if !authz.Can(actor, authz.ActionViewAppointment, res) {
		return nil, ErrNotAuthorized
	}
	return appt, nil
}

// ListOwn returns the actor's appointments.
func (s *Service) ListOwn(ctx context.Context, actor identity.Actor) ([]*Appointment, error) {
	switch actor.Role {
	case identity.RolePatient:
		return s.repo.ListByPatient(ctx, actor.ID)
	case identity.RoleDoctor:
		return s.repo.ListByDoctor(ctx, actor.ID)
	}
	return nil, ErrNotAuthorized
}

// Transition moves an appointment along its lifecycle. Doctors confirm,
// complete and cancel their own appointments; patients may only cancel their
// own.
func (s *Service) Transition(ctx context.Context, actor identity.Actor, id uuid.UUID, to Status) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.appointment_id", id.String()),
		attribute.String("clinic.to_status", string(to)),
	)

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	action, ok := actionForTransition(to)
	if !ok {
		return nil, ErrInvalidStatus
	}
	res := authz.Resource{PatientID: appt.PatientID, DoctorID: appt.DoctorID}
	if !authz.Can(actor, action, res) {
		return nil, ErrNotAuthorized
	}

	if appt.Status.Terminal() {
		return nil, ErrTerminalStatus
	}
	if !canTransition(appt.Status, to) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, appt.Status, to); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveTransition(string(appt.Status), string(to))
	s.logger.Info("appointment status changed",
		"appointment_id", id, "from", appt.Status, "to", to, "actor_id", actor.ID)

	prev := appt.Status
	appt.Status = to
	s.notifyTransition(ctx, actor, appt, prev)
	return appt, nil
}

func actionForTransition(to Status) (authz.Action, bool) {
	switch to {
	case StatusConfirmed:
		return authz.ActionConfirmAppointment, true
	case StatusCompleted:
		return authz.ActionCompleteAppointment, true
	case StatusCancelled:
		return authz.ActionCancelAppointment, true
	}
	return "", false
}

// notifyTransition emails the patient, unless the patient made the change
// themselves.
func (s *Service) notifyTransition(ctx context.Context, actor identity.Actor, appt *Appointment, from Status) {
	if s.notifier == nil || actor.ID == appt.PatientID {
		return
	}
	patient, err := s.accounts.Get(ctx, appt.PatientID)
	if err != nil {
		s.logger.Error("lookup patient for notification failed", "error", err, "patient_id", appt.PatientID)
		return
	}
	s.notifier.AppointmentStatusChanged(ctx, patient.Email, patient.FullName(), string(appt.Status), appt.When)
}
