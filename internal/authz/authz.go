// Package authz centralizes role-based permission decisions so that the
// appointment lifecycle and report workflow share one capability check
// instead of scattering per-handler role logic.
package authz

import (
	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/identity"
)

// Action names an operation an actor may attempt on a resource.
type Action string

const (
	ActionCancelAppointment   Action = "appointment.cancel"
	ActionConfirmAppointment  Action = "appointment.confirm"
	ActionCompleteAppointment Action = "appointment.complete"
	ActionViewAppointment     Action = "appointment.view"
	ActionRespondToReport     Action = "report.respond"
	ActionEditResponse        Action = "report.edit_response"
	ActionViewReport          Action = "report.view"
	ActionApproveAccount      Action = "account.approve"
	ActionManageAvailability  Action = "availability.manage"
)

// Resource carries the ownership references a permission decision needs.
// Zero UUIDs mean "no such party on this resource".
type Resource struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

// Can reports whether the actor may perform action on the resource.
// Administrators hold only the capabilities explicitly granted to them;
// they do not inherit patient or doctor powers.
func Can(actor identity.Actor, action Action, res Resource) bool {
	switch action {
	case ActionApproveAccount:
		return actor.IsAdmin()

	case ActionManageAvailability:
		return actor.Role == identity.RoleDoctor && actor.ID == res.DoctorID

	case ActionCancelAppointment:
		if actor.Role == identity.RolePatient {
			return actor.ID == res.PatientID
		}
		return actor.Role == identity.RoleDoctor && actor.ID == res.DoctorID

	case ActionConfirmAppointment, ActionCompleteAppointment:
		return actor.Role == identity.RoleDoctor && actor.ID == res.DoctorID

	case ActionViewAppointment:
		if actor.IsAdmin() {
			return true
		}
		return actor.ID == res.PatientID || actor.ID == res.DoctorID

	case ActionRespondToReport, ActionEditResponse:
		return actor.Role == identity.RoleDoctor && actor.ID == res.DoctorID

	case ActionViewReport:
		if actor.IsAdmin() {
			return true
		}
		return actor.ID == res.PatientID || actor.ID == res.DoctorID
	}
	return false
}
