package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultBookingWindow is how far ahead appointments may be booked.
const DefaultBookingWindow = 30 * 24 * time.Hour

// EntrySource looks up blackout entries for the checker. Satisfied by every
// Repository implementation.
type EntrySource interface {
	FindByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*Entry, error)
}

// Checker decides whether a slot is bookable. It holds no state beyond the
// entry source; the same decision must be re-evaluated at write time because
// entries can appear between a read-time check and the insert.
type Checker struct {
	entries EntrySource
	window  time.Duration
}

// NewChecker constructs a Checker with the given booking window. A zero
// window means DefaultBookingWindow.
func NewChecker(entries EntrySource, window time.Duration) *Checker {
	if entries == nil {
		panic("availability: entry source required")
	}
	if window <= 0 {
		window = DefaultBookingWindow
	}
	return &Checker{entries: entries, window: window}
}

// Window returns the configured booking window.
func (c *Checker) Window() time.Duration {
	return c.window
}

// IsBookable returns nil when the doctor can be booked at requestedAt, or a
// *RejectError naming the reason. Bounds are checked before the blackout
// lookup so a past date never touches storage.
func (c *Checker) IsBookable(ctx context.Context, doctorID uuid.UUID, requestedAt, now time.Time) error {
	if requestedAt.Before(now) {
		return &RejectError{Reason: ReasonPastDate, Date: requestedAt}
	}
	if requestedAt.After(now.Add(c.window)) {
		return &RejectError{Reason: ReasonTooFarAhead, Date: requestedAt}
	}

	entry, err := c.entries.FindByDoctorDate(ctx, doctorID, DateOnly(requestedAt))
	if err != nil {
		if err == ErrEntryNotFound {
			return nil
		}
		return err
	}
	return &RejectError{Reason: ReasonDoctorUnavailable, Date: DateOnly(requestedAt), Detail: entry.Reason}
}
