package reports

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for report and response storage.
// CreateResponse must reject a second response for the same report.
type Repository interface {
	CreateReport(ctx context.Context, report *Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*Report, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Report, error)
	ListSharedWithDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Report, error)

	CreateResponse(ctx context.Context, resp *Response) error
	GetResponse(ctx context.Context, reportID uuid.UUID) (*Response, error)
	UpdateResponse(ctx context.Context, resp *Response) error
}

// InMemoryRepository stores reports in memory. Used by tests and local dev.
type InMemoryRepository struct {
	mu        sync.RWMutex
	reports   map[uuid.UUID]*Report
	responses map[uuid.UUID]*Response // keyed by report id
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reports:   make(map[uuid.UUID]*Report),
		responses: make(map[uuid.UUID]*Response),
	}
}

// CreateReport stores the report.
func (r *InMemoryRepository) CreateReport(ctx context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *report
	stored.Response = nil
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
		report.UploadedAt = stored.UploadedAt
	}
	r.reports[report.ID] = &stored
	return nil
}

// GetReport retrieves a report by id, without its response.
func (r *InMemoryRepository) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	copied := *report
	return &copied, nil
}

// ListByPatient returns a patient's reports, newest first.
func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Report, error) {
	return r.list(func(rep *Report) bool { return rep.PatientID == patientID }), nil
}

// ListSharedWithDoctor returns reports shared with the doctor, newest first.
func (r *InMemoryRepository) ListSharedWithDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Report, error) {
	return r.list(func(rep *Report) bool { return rep.SharedWith == doctorID }), nil
}

func (r *InMemoryRepository) list(match func(*Report) bool) []*Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Report{}
	for _, report := range r.reports {
		if match(report) {
			copied := *report
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out
}

// CreateResponse stores the response, enforcing one per report.
func (r *InMemoryRepository) CreateResponse(ctx context.Context, resp *Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[resp.ReportID]; !ok {
		return ErrReportNotFound
	}
	if _, ok := r.responses[resp.ReportID]; ok {
		return ErrAlreadyResponded
	}
	stored := *resp
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
		stored.UpdatedAt = stored.CreatedAt
		resp.CreatedAt = stored.CreatedAt
		resp.UpdatedAt = stored.UpdatedAt
	}
	r.responses[resp.ReportID] = &stored
	return nil
}

// GetResponse retrieves the response attached to a report.
func (r *InMemoryRepository) GetResponse(ctx context.Context, reportID uuid.UUID) (*Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.responses[reportID]
	if !ok {
		return nil, ErrResponseNotFound
	}
	copied := *resp
	return &copied, nil
}

// UpdateResponse replaces the stored response body fields.
func (r *InMemoryRepository) UpdateResponse(ctx context.Context, resp *Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.responses[resp.ReportID]
	if !ok {
		return ErrResponseNotFound
	}
	existing.Diagnosis = resp.Diagnosis
	existing.Prescription = resp.Prescription
	existing.Recommendations = resp.Recommendations
	existing.Advice = resp.Advice
	existing.UpdatedAt = resp.UpdatedAt
	return nil
}
