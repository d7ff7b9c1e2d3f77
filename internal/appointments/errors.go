package appointments

import "errors"

var (
	// ErrNotFound is returned when no appointment matches the lookup.
	ErrNotFound = errors.New("appointment not found")

	// ErrNotAuthorized is returned when the actor may not act on the appointment.
	ErrNotAuthorized = errors.New("not authorized for this appointment")

	// ErrInvalidStatus is returned for a status outside the lifecycle enum.
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidTransition is returned when the lifecycle graph forbids the move.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrTerminalStatus is returned when the appointment is already completed
	// or cancelled.
	ErrTerminalStatus = errors.New("appointment is in a terminal state")

	// ErrStatusChanged is returned when a concurrent update moved the
	// appointment between read and write. Callers may re-read and retry.
	ErrStatusChanged = errors.New("appointment status changed concurrently")

	// ErrDoctorNotAvailable is returned when the requested doctor is not an
	// approved doctor.
	ErrDoctorNotAvailable = errors.New("doctor is not accepting appointments")

	// ErrReasonRequired is returned when the booking has no reason text.
	ErrReasonRequired = errors.New("a reason for the visit is required")

	// ErrPatientsOnly is returned when a non-patient books an appointment.
	ErrPatientsOnly = errors.New("only patients can book appointments")
)
