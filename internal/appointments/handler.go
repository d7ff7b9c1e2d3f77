package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/availability"
	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for appointments.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Book handles POST /appointments requests.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), actor, req)
	if err != nil {
		var reject *availability.RejectError
		switch {
		case errors.As(err, &reject):
			status := http.StatusBadRequest
			if reject.Reason == availability.ReasonDoctorUnavailable {
				status = http.StatusConflict
			}
			writeJSON(w, status, map[string]string{
				"code":  string(reject.Reason),
				"error": reject.Error(),
			})
		case errors.Is(err, ErrPatientsOnly):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, ErrReasonRequired):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrDoctorNotAvailable):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error("booking failed", "error", err, "patient_id", actor.ID)
			http.Error(w, "booking failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// ListOwn handles GET /appointments requests.
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	appts, err := h.service.ListOwn(r.Context(), actor)
	if err != nil {
		if errors.Is(err, ErrNotAuthorized) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		h.logger.Error("failed to list appointments", "error", err, "actor_id", actor.ID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts, "count": len(appts)})
}

// Get handles GET /appointments/{appointmentID} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrNotAuthorized):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			h.logger.Error("failed to get appointment", "error", err, "appointment_id", id)
			http.Error(w, "failed to get appointment", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

type transitionRequest struct {
	Status string `json:"status"`
}

// Transition handles POST /appointments/{appointmentID}/status requests.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	to, ok := ParseStatus(req.Status)
	if !ok {
		http.Error(w, ErrInvalidStatus.Error(), http.StatusBadRequest)
		return
	}

	appt, err := h.service.Transition(r.Context(), actor, id, to)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrNotAuthorized):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrTerminalStatus), errors.Is(err, ErrStatusChanged):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("status change failed", "error", err, "appointment_id", id)
			http.Error(w, "status change failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
