package availability

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDateAlreadyMarked is returned when the (doctor, date) pair already
	// has a blackout entry.
	ErrDateAlreadyMarked = errors.New("date is already marked as unavailable")

	// ErrEntryNotFound is returned when no entry matches the lookup.
	ErrEntryNotFound = errors.New("unavailability entry not found")

	// ErrNotYourEntry is returned when a doctor touches another doctor's entry.
	ErrNotYourEntry = errors.New("entry belongs to another doctor")

	// ErrPastDate is returned when marking a date that has already passed.
	ErrPastDate = errors.New("cannot mark past dates as unavailable")

	// ErrDoctorsOnly is returned when a non-doctor manages availability.
	ErrDoctorsOnly = errors.New("only doctors can manage availability")
)

// RejectReason classifies why a requested slot is not bookable.
type RejectReason string

const (
	ReasonPastDate          RejectReason = "past_date"
	ReasonTooFarAhead       RejectReason = "too_far_ahead"
	ReasonDoctorUnavailable RejectReason = "doctor_unavailable"
)

// RejectError reports that a requested slot is not bookable and why.
type RejectError struct {
	Reason RejectReason
	Date   time.Time
	Detail string
}

func (e *RejectError) Error() string {
	switch e.Reason {
	case ReasonPastDate:
		return "cannot book appointments in the past"
	case ReasonTooFarAhead:
		return "appointments can only be booked up to 30 days in advance"
	case ReasonDoctorUnavailable:
		msg := fmt.Sprintf("doctor is not available on %s", e.Date.Format("2006-01-02"))
		if e.Detail != "" {
			msg += " (" + e.Detail + ")"
		}
		return msg
	}
	return "slot is not bookable"
}
