package directory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for accounts and sessions.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new directory handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register handles POST /auth/register requests.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.service.Register(r.Context(), &req)
	if err != nil {
		var verr ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr})
		case errors.Is(err, ErrEmailTaken):
			http.Error(w, ErrEmailTaken.Error(), http.StatusConflict)
		default:
			h.logger.Error("registration failed", "error", err)
			http.Error(w, "registration failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

// Login handles POST /auth/login requests.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, token, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrPendingApproval):
			writeJSON(w, http.StatusForbidden, map[string]string{
				"code":  "pending_approval",
				"error": ErrPendingApproval.Error(),
			})
		case errors.Is(err, ErrInvalidCredentials):
			http.Error(w, ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		default:
			h.logger.Error("login failed", "error", err)
			http.Error(w, "login failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, Account: account})
}

// ListDoctors handles GET /doctors?specialization= requests. Returns approved
// doctors only; an empty list is a valid response.
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	spec := Specialization(r.URL.Query().Get("specialization"))

	doctors, err := h.service.ApprovedDoctors(r.Context(), spec)
	if err != nil {
		var verr ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr})
			return
		}
		h.logger.Error("failed to list doctors", "error", err)
		http.Error(w, "failed to list doctors", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"doctors": doctors, "count": len(doctors)})
}

// ListPendingDoctors handles GET /admin/doctors/pending requests.
func (h *Handler) ListPendingDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.service.PendingDoctors(r.Context())
	if err != nil {
		h.logger.Error("failed to list pending doctors", "error", err)
		http.Error(w, "failed to list pending doctors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctors": doctors, "count": len(doctors)})
}

type approvalRequest struct {
	Decision identity.ApprovalStatus `json:"decision"`
}

// SetApproval handles POST /admin/accounts/{accountID}/approval requests.
func (h *Handler) SetApproval(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetApproval(r.Context(), actor, accountID, req.Decision); err != nil {
		switch {
		case errors.Is(err, ErrNotAuthorized):
			http.Error(w, ErrNotAuthorized.Error(), http.StatusForbidden)
		case errors.Is(err, ErrInvalidDecision):
			http.Error(w, ErrInvalidDecision.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrAccountNotFound):
			http.Error(w, ErrAccountNotFound.Error(), http.StatusNotFound)
		default:
			h.logger.Error("approval decision failed", "error", err, "account_id", accountID)
			http.Error(w, "approval decision failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Decision)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
