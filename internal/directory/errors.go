package directory

import "errors"

var (
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPendingApproval is returned when a doctor with correct credentials
	// has not yet been approved by an administrator.
	ErrPendingApproval = errors.New("account is pending admin approval")

	// ErrNotAuthorized is returned when the actor may not perform the operation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidDecision is returned for approval decisions outside approved/rejected.
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
)
