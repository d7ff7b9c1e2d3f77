package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/identity"
)

// Repository defines the interface for account storage.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status identity.ApprovalStatus) error
	ListDoctors(ctx context.Context, spec Specialization, status identity.ApprovalStatus) ([]*Account, error)
}

// InMemoryRepository stores accounts in memory. Used by tests and local dev.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[uuid.UUID]*Account)}
}

// Create stores the account, enforcing email uniqueness.
func (r *InMemoryRepository) Create(ctx context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return ErrEmailTaken
		}
	}
	stored := *account
	r.accounts[account.ID] = &stored
	return nil
}

// GetByID retrieves an account by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

// GetByEmail retrieves an account by email, case-insensitively.
func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if strings.EqualFold(account.Email, email) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, ErrAccountNotFound
}

// UpdateStatus sets the approval status of an account.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status identity.ApprovalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.Status = status
	return nil
}

// ListDoctors returns doctors filtered by specialization and status. An empty
// specialization matches all specialties.
func (r *InMemoryRepository) ListDoctors(ctx context.Context, spec Specialization, status identity.ApprovalStatus) ([]*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Account{}
	for _, account := range r.accounts {
		if account.Role != identity.RoleDoctor || account.Status != status {
			continue
		}
		if spec != "" && account.Specialization != spec {
			continue
		}
		copied := *account
		out = append(out, &copied)
	}
	return out, nil
}
