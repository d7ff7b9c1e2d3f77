package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebridge/clinic-platform/internal/authz"
	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/internal/notify"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

// Service implements registration, login and the admin approval workflow.
type Service struct {
	repo     Repository
	notifier *notify.Notifier
	logger   *logging.Logger
	secret   string
	tokenTTL time.Duration
}

// NewService constructs a directory service.
func NewService(repo Repository, logger *logging.Logger, secret string, tokenTTL time.Duration) *Service {
	if repo == nil {
		panic("directory: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{repo: repo, logger: logger, secret: secret, tokenTTL: tokenTTL}
}

// WithNotifier enables email notifications for approval decisions.
func (s *Service) WithNotifier(n *notify.Notifier) *Service {
	s.notifier = n
	return s
}

// Register validates the request and creates the account. Doctors start
// pending, patients start approved.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("directory: hash password: %w", err)
	}

	status := identity.StatusApproved
	if req.Role == identity.RoleDoctor {
		status = identity.StatusPending
	}

	account := &Account{
		ID:           uuid.New(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       status,
		Phone:        req.Phone,
		Address:      req.Address,
		Bio:          req.Bio,
		CreatedAt:    time.Now().UTC(),
	}
	if req.Role == identity.RoleDoctor {
		account.Specialization = req.Specialization
		account.LicenseNumber = req.LicenseNumber
		account.ExperienceYears = *req.ExperienceYears
		account.HospitalName = req.HospitalName
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", "account_id", account.ID, "role", account.Role, "status", account.Status)
	return account, nil
}

// Authenticate verifies credentials and issues a session token. A doctor whose
// approval is still pending is refused with ErrPendingApproval, which callers
// must keep distinct from bad credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, string, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if account.Role == identity.RoleDoctor && account.Status == identity.StatusPending {
		return nil, "", ErrPendingApproval
	}

	token, err := identity.Sign(account.Actor(), s.secret, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("login succeeded", "account_id", account.ID, "role", account.Role)
	return account, token, nil
}

// SetApproval records an admin decision on an account. Repeating a decision is
// idempotent and not an error.
func (s *Service) SetApproval(ctx context.Context, actor identity.Actor, accountID uuid.UUID, decision identity.ApprovalStatus) error {
	if !authz.Can(actor, authz.ActionApproveAccount, authz.Resource{}) {
		return ErrNotAuthorized
	}
	if decision != identity.StatusApproved && decision != identity.StatusRejected {
		return ErrInvalidDecision
	}

	if err := s.repo.UpdateStatus(ctx, accountID, decision); err != nil {
		return err
	}

	s.logger.Info("approval decision recorded", "account_id", accountID, "decision", decision, "admin_id", actor.ID)

	if account, err := s.repo.GetByID(ctx, accountID); err == nil {
		s.notifier.ApprovalDecision(ctx, account.Email, account.FullName(), decision == identity.StatusApproved)
	}
	return nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// ApprovedDoctors returns approved doctors for a specialization. An empty
// result means no providers are currently available; that is not an error.
func (s *Service) ApprovedDoctors(ctx context.Context, spec Specialization) ([]*Account, error) {
	if spec != "" && !spec.Valid() {
		return nil, ValidationError{{Field: "specialization", Message: "unknown specialization"}}
	}
	return s.repo.ListDoctors(ctx, spec, identity.StatusApproved)
}

// PendingDoctors returns doctors awaiting an approval decision.
func (s *Service) PendingDoctors(ctx context.Context) ([]*Account, error) {
	return s.repo.ListDoctors(ctx, "", identity.StatusPending)
}

// EnsureAdmin creates the bootstrap administrator account if it does not exist.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrAccountNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("directory: hash admin password: %w", err)
	}
	admin := &Account{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    name,
		PasswordHash: string(hash),
		Role:         identity.RoleAdmin,
		Status:       identity.StatusApproved,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil
		}
		return err
	}
	s.logger.Info("bootstrap admin created", "account_id", admin.ID)
	return nil
}
