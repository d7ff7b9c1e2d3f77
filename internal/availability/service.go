package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/authz"
	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

// Service lets doctors manage their blackout dates.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

// NewService constructs an availability service.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("availability: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Mark declares a blackout date for the acting doctor.
func (s *Service) Mark(ctx context.Context, actor identity.Actor, req MarkRequest) (*Entry, error) {
	if actor.Role != identity.RoleDoctor {
		return nil, ErrDoctorsOnly
	}

	day := DateOnly(req.Date)
	if day.Before(DateOnly(time.Now())) {
		return nil, ErrPastDate
	}

	entry := &Entry{
		ID:       uuid.New(),
		DoctorID: actor.ID,
		Date:     day,
		Reason:   req.Reason,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("blackout date marked", "doctor_id", actor.ID, "date", day.Format("2006-01-02"))
	return entry, nil
}

// Unmark removes one of the acting doctor's blackout dates.
func (s *Service) Unmark(ctx context.Context, actor identity.Actor, entryID uuid.UUID) error {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if !authz.Can(actor, authz.ActionManageAvailability, authz.Resource{DoctorID: entry.DoctorID}) {
		return ErrNotYourEntry
	}
	if err := s.repo.Delete(ctx, entryID); err != nil {
		return err
	}
	s.logger.Info("blackout date removed", "doctor_id", actor.ID, "date", entry.Date.Format("2006-01-02"))
	return nil
}

// ListOwn returns the acting doctor's blackout entries.
func (s *Service) ListOwn(ctx context.Context, actor identity.Actor) ([]*Entry, error) {
	if actor.Role != identity.RoleDoctor {
		return nil, ErrDoctorsOnly
	}
	return s.repo.ListByDoctor(ctx, actor.ID)
}

// DatesForDoctor returns a doctor's blackout dates. Patients use this while
// picking an appointment slot.
func (s *Service) DatesForDoctor(ctx context.Context, doctorID uuid.UUID) ([]time.Time, error) {
	entries, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(entries))
	for i, entry := range entries {
		dates[i] = entry.Date
	}
	return dates, nil
}
