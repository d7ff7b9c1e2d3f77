package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/directory"
	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for medical reports.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new reports handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Upload handles POST /reports multipart requests.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		http.Error(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	req := UploadRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    directory.Specialization(r.FormValue("category")),
	}
	if raw := r.FormValue("shared_with"); raw != "" {
		target, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid shared_with id", http.StatusBadRequest)
			return
		}
		req.SharedWith = target
	}

	file, header, err := r.FormFile("report_file")
	if err == nil {
		defer file.Close()
		req.File = file
		req.FileName = header.Filename
	}

	report, err := h.service.Upload(r.Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPatientsOnly):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, ErrTitleRequired),
			errors.Is(err, ErrInvalidCategory),
			errors.Is(err, ErrFileRequired),
			errors.Is(err, ErrUnsupportedFormat):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrFileTooLarge):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		case errors.Is(err, ErrDoctorNotShareable):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("report upload failed", "error", err, "patient_id", actor.ID)
			http.Error(w, "upload failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

// ListOwn handles GET /reports requests.
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	reports, err := h.service.ListOwn(r.Context(), actor)
	if err != nil {
		if errors.Is(err, ErrNotAuthorized) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		h.logger.Error("failed to list reports", "error", err, "actor_id", actor.ID)
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"reports": reports, "count": len(reports)})
}

// Get handles GET /reports/{reportID} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndReportID(w, r)
	if !ok {
		return
	}

	report, err := h.service.Get(r.Context(), actor, reportID)
	if err != nil {
		h.writeReportError(w, err, reportID)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// DownloadFile handles GET /reports/{reportID}/file requests.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndReportID(w, r)
	if !ok {
		return
	}

	data, contentType, fileName, err := h.service.DownloadFile(r.Context(), actor, reportID)
	if err != nil {
		h.writeReportError(w, err, reportID)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Write(data)
}

// Respond handles POST /reports/{reportID}/response requests.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndReportID(w, r)
	if !ok {
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Respond(r.Context(), actor, reportID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyResponded):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrResponseIncomplete):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.writeReportError(w, err, reportID)
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// EditResponse handles PUT /reports/{reportID}/response requests.
func (h *Handler) EditResponse(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndReportID(w, r)
	if !ok {
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.EditResponse(r.Context(), actor, reportID, req)
	if err != nil {
		if errors.Is(err, ErrResponseIncomplete) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.writeReportError(w, err, reportID)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// DownloadConsultation handles GET /reports/{reportID}/consultation requests.
func (h *Handler) DownloadConsultation(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndReportID(w, r)
	if !ok {
		return
	}

	data, fileName, err := h.service.RenderConsultation(r.Context(), actor, reportID)
	if err != nil {
		h.writeReportError(w, err, reportID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Write(data)
}

func (h *Handler) actorAndReportID(w http.ResponseWriter, r *http.Request) (identity.Actor, uuid.UUID, bool) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return identity.Actor{}, uuid.Nil, false
	}
	reportID, err := uuid.Parse(chi.URLParam(r, "reportID"))
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return identity.Actor{}, uuid.Nil, false
	}
	return actor, reportID, true
}

func (h *Handler) writeReportError(w http.ResponseWriter, err error, reportID uuid.UUID) {
	switch {
	case errors.Is(err, ErrReportNotFound), errors.Is(err, ErrResponseNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNotAuthorized),
		errors.Is(err, ErrNotSharedWithYou),
		errors.Is(err, ErrNotYourResponse):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		h.logger.Error("report request failed", "error", err, "report_id", reportID)
		http.Error(w, "request failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
