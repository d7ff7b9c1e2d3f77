package identity

import "github.com/google/uuid"

// Role identifies what kind of account is acting.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// ApprovalStatus is the account approval state carried in the session.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Actor is the authenticated identity attached to every request.
type Actor struct {
	ID     uuid.UUID
	Role   Role
	Status ApprovalStatus
	Name   string
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsApprovedDoctor reports whether the actor is a doctor cleared by an admin.
func (a Actor) IsApprovedDoctor() bool {
	return a.Role == RoleDoctor && a.Status == StatusApproved
}
