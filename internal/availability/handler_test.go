package availability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

func newTestHandlerRouter() (http.Handler, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	h := NewHandler(NewService(repo, logging.Default()), logging.Default())

	r := chi.NewRouter()
	r.Post("/availability", h.Mark)
	r.Get("/availability", h.ListOwn)
	r.Delete("/availability/{entryID}", h.Unmark)
	r.Get("/doctors/{doctorID}/unavailable-dates", h.DoctorDates)
	return r, repo
}

func doAs(h http.Handler, actor *identity.Actor, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if actor != nil {
		req = req.WithContext(identity.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerMarkAndList(t *testing.T) {
	h, _ := newTestHandlerRouter()
	doctor := identity.Actor{ID: uuid.New(), Role: identity.RoleDoctor, Status: identity.StatusApproved}

	tomorrow := time.Now().UTC().Add(24 * time.Hour)
	rec := doAs(h, &doctor, http.MethodPost, "/availability", MarkRequest{Date: tomorrow, Reason: "Conference"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("mark: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var entry Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.Reason != "Conference" {
		t.Fatalf("reason = %q", entry.Reason)
	}

	list := doAs(h, &doctor, http.MethodGet, "/availability", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list: status = %d", list.Code)
	}
	var listed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listed.Count != 1 {
		t.Fatalf("count = %d, want 1", listed.Count)
	}
}

func TestHandlerMarkRejectsPatients(t *testing.T) {
	h, _ := newTestHandlerRouter()
	patient := identity.Actor{ID: uuid.New(), Role: identity.RolePatient, Status: identity.StatusApproved}

	rec := doAs(h, &patient, http.MethodPost, "/availability", MarkRequest{Date: time.Now().Add(24 * time.Hour)})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestHandlerMarkDuplicateConflicts(t *testing.T) {
	h, _ := newTestHandlerRouter()
	doctor := identity.Actor{ID: uuid.New(), Role: identity.RoleDoctor, Status: identity.StatusApproved}
	tomorrow := time.Now().UTC().Add(24 * time.Hour)

	if rec := doAs(h, &doctor, http.MethodPost, "/availability", MarkRequest{Date: tomorrow}); rec.Code != http.StatusCreated {
		t.Fatalf("first mark: status = %d", rec.Code)
	}
	rec := doAs(h, &doctor, http.MethodPost, "/availability", MarkRequest{Date: tomorrow})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second mark: status = %d, want 409", rec.Code)
	}
}

func TestHandlerUnmark(t *testing.T) {
	h, repo := newTestHandlerRouter()
	doctor := identity.Actor{ID: uuid.New(), Role: identity.RoleDoctor, Status: identity.StatusApproved}
	other := identity.Actor{ID: uuid.New(), Role: identity.RoleDoctor, Status: identity.StatusApproved}

	rec := doAs(h, &doctor, http.MethodPost, "/availability", MarkRequest{Date: time.Now().Add(24 * time.Hour)})
	if rec.Code != http.StatusCreated {
		t.Fatalf("mark: status = %d", rec.Code)
	}
	var entry Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}

	if del := doAs(h, &other, http.MethodDelete, "/availability/"+entry.ID.String(), nil); del.Code != http.StatusForbidden {
		t.Fatalf("foreign unmark: status = %d, want 403", del.Code)
	}
	if del := doAs(h, &doctor, http.MethodDelete, "/availability/"+entry.ID.String(), nil); del.Code != http.StatusNoContent {
		t.Fatalf("unmark: status = %d, want 204", del.Code)
	}
	if _, err := repo.GetByID(t.Context(), entry.ID); err == nil {
		t.Fatal("entry still present after unmark")
	}
	if del := doAs(h, &doctor, http.MethodDelete, "/availability/"+entry.ID.String(), nil); del.Code != http.StatusNotFound {
		t.Fatalf("repeat unmark: status = %d, want 404", del.Code)
	}
}

func TestHandlerDoctorDatesIsPublic(t *testing.T) {
	h, _ := newTestHandlerRouter()
	doctor := identity.Actor{ID: uuid.New(), Role: identity.RoleDoctor, Status: identity.StatusApproved}

	day := time.Now().UTC().Add(48 * time.Hour)
	if rec := doAs(h, &doctor, http.MethodPost, "/availability", MarkRequest{Date: day}); rec.Code != http.StatusCreated {
		t.Fatalf("mark: status = %d", rec.Code)
	}

	rec := doAs(h, nil, http.MethodGet, fmt.Sprintf("/doctors/%s/unavailable-dates", doctor.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out struct {
		Dates []string `json:"unavailable_dates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode dates: %v", err)
	}
	if len(out.Dates) != 1 || out.Dates[0] != DateOnly(day).Format("2006-01-02") {
		t.Fatalf("dates = %v", out.Dates)
	}
}
