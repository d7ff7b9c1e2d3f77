package availability

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a doctor-declared blackout date. At most one entry may exist per
// (doctor, date).
type Entry struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      time.Time `json:"date"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MarkRequest carries the inputs for declaring a blackout date.
type MarkRequest struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason"`
}
