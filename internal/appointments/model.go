package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"

	// legacyScheduled is accepted from stored rows and older clients and
	// normalized to confirmed. It is never written back.
	legacyScheduled = "scheduled"
)

// ParseStatus validates a status string and folds the legacy alias.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case string(StatusPending), string(StatusConfirmed), string(StatusCompleted), string(StatusCancelled):
		return Status(s), true
	case legacyScheduled:
		return StatusConfirmed, true
	}
	return "", false
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// canTransition encodes the lifecycle graph:
// pending -> confirmed | cancelled; confirmed -> completed | cancelled.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// Appointment is a scheduled patient-doctor encounter.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	When      time.Time `json:"when"`
	Status    Status    `json:"status"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookRequest carries the inputs for booking an appointment. Any status a
// client sends is ignored; new appointments always start pending.
type BookRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	When     time.Time `json:"when"`
	Reason   string    `json:"reason"`
}
