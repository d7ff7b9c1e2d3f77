package availability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for blackout entry storage.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Entry, error)
	FindByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InMemoryRepository stores entries in memory. Used by tests and local dev.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: make(map[uuid.UUID]*Entry)}
}

// Create stores an entry, enforcing (doctor, date) uniqueness.
func (r *InMemoryRepository) Create(ctx context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := DateOnly(entry.Date)
	for _, existing := range r.entries {
		if existing.DoctorID == entry.DoctorID && existing.Date.Equal(day) {
			return ErrDateAlreadyMarked
		}
	}
	stored := *entry
	stored.Date = day
	r.entries[entry.ID] = &stored
	return nil
}

// GetByID retrieves an entry by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

// ListByDoctor returns all entries for a doctor.
func (r *InMemoryRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Entry{}
	for _, entry := range r.entries {
		if entry.DoctorID == doctorID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out, nil
}

// FindByDoctorDate returns the entry for (doctor, date) or ErrEntryNotFound.
func (r *InMemoryRepository) FindByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := DateOnly(date)
	for _, entry := range r.entries {
		if entry.DoctorID == doctorID && entry.Date.Equal(day) {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, ErrEntryNotFound
}

// Delete removes an entry.
func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}
