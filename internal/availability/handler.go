package availability

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for doctor blackout dates.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new availability handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Mark handles POST /availability requests.
func (h *Handler) Mark(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.service.Mark(r.Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDoctorsOnly):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, ErrPastDate):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrDateAlreadyMarked):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to mark blackout date", "error", err, "doctor_id", actor.ID)
			http.Error(w, "failed to mark date", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// ListOwn handles GET /availability requests.
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	entries, err := h.service.ListOwn(r.Context(), actor)
	if err != nil {
		if errors.Is(err, ErrDoctorsOnly) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		h.logger.Error("failed to list blackout dates", "error", err, "doctor_id", actor.ID)
		http.Error(w, "failed to list entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"entries": entries, "count": len(entries)})
}

// Unmark handles DELETE /availability/{entryID} requests.
func (h *Handler) Unmark(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	if err := h.service.Unmark(r.Context(), actor, entryID); err != nil {
		switch {
		case errors.Is(err, ErrEntryNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrNotYourEntry):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			h.logger.Error("failed to remove blackout date", "error", err, "entry_id", entryID)
			http.Error(w, "failed to remove entry", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DoctorDates handles GET /doctors/{doctorID}/unavailable-dates requests.
func (h *Handler) DoctorDates(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	dates, err := h.service.DatesForDoctor(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to list doctor dates", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to list dates", http.StatusInternalServerError)
		return
	}

	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format("2006-01-02")
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"unavailable_dates": out})
}
