package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

func newTestHandler() (*Handler, *Service) {
	svc := NewService(NewInMemoryRepository(), logging.Default(), "test-secret", time.Hour)
	return NewHandler(svc, logging.Default()), svc
}

func TestRegisterEndpoint_Patient(t *testing.T) {
	handler, _ := newTestHandler()

	body, _ := json.Marshal(patientRequest())
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var account Account
	if err := json.NewDecoder(w.Body).Decode(&account); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if account.Status != identity.StatusApproved {
		t.Errorf("expected approved patient, got %s", account.Status)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("response must not leak password material")
	}
}

func TestRegisterEndpoint_FieldErrors(t *testing.T) {
	handler, _ := newTestHandler()

	reqBody := doctorRequest()
	reqBody.LicenseNumber = "12AB"
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Errors) == 0 || resp.Errors[0].Field != "license_number" {
		t.Errorf("expected license_number field error, got %+v", resp.Errors)
	}
}

func TestRegisterEndpoint_InvalidJSON(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestLoginEndpoint_PendingDoctor(t *testing.T) {
	handler, svc := newTestHandler()

	if _, err := svc.Register(context.Background(), doctorRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := json.Marshal(loginRequest{Email: "house@example.com", Password: "lupus-is-never-it"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["code"] != "pending_approval" {
		t.Errorf("expected pending_approval code, got %q", resp["code"])
	}
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	handler, svc := newTestHandler()

	if _, err := svc.Register(context.Background(), patientRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := json.Marshal(loginRequest{Email: "jane@example.com", Password: "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestLoginEndpoint_Success(t *testing.T) {
	handler, svc := newTestHandler()

	if _, err := svc.Register(context.Background(), patientRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := json.Marshal(loginRequest{Email: "jane@example.com", Password: "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp loginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected session token in response")
	}
}

func TestListDoctorsEndpoint_EmptyIsValid(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/doctors?specialization=dentist", nil)
	w := httptest.NewRecorder()

	handler.ListDoctors(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("expected empty doctor set, got %d", resp.Count)
	}
}

func TestListDoctorsEndpoint_UnknownSpecialization(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/doctors?specialization=astrologist", nil)
	w := httptest.NewRecorder()

	handler.ListDoctors(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
