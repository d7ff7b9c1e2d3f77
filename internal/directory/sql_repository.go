package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carebridge/clinic-platform/internal/identity"
)

const uniqueViolation = "23505"

// SQLRepository stores accounts in the relational database.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository initializes a repo backed by database/sql.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	if db == nil {
		panic("directory: db required")
	}
	return &SQLRepository{db: db}
}

const accountColumns = `id, email, first_name, last_name, password_hash, role, status,
	phone, address, bio, specialization, license_number, experience_years, hospital_name, created_at`

// Create inserts a new account row.
func (r *SQLRepository) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (id, email, first_name, last_name, password_hash, role, status,
			phone, address, bio, specialization, license_number, experience_years, hospital_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.ID,
		account.Email,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.Role,
		account.Status,
		account.Phone,
		account.Address,
		account.Bio,
		string(account.Specialization),
		account.LicenseNumber,
		account.ExperienceYears,
		account.HospitalName,
	).Scan(&account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("directory: insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by id.
func (r *SQLRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail fetches an account by email.
func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE lower(email) = lower($1)`, accountColumns)
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

// UpdateStatus sets the approval status of an account.
func (r *SQLRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status identity.ApprovalStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("directory: update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("directory: update status: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ListDoctors returns doctors filtered by specialization and status.
func (r *SQLRepository) ListDoctors(ctx context.Context, spec Specialization, status identity.ApprovalStatus) ([]*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM accounts
		WHERE role = 'doctor' AND status = $1 AND ($2 = '' OR specialization = $2)
		ORDER BY last_name, first_name`, accountColumns)
	rows, err := r.db.QueryContext(ctx, query, status, string(spec))
	if err != nil {
		return nil, fmt.Errorf("directory: list doctors: %w", err)
	}
	defer rows.Close()

	out := []*Account{}
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLRepository) scanAccount(row rowScanner) (*Account, error) {
	account, err := scanAccountRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func scanAccountRow(row rowScanner) (*Account, error) {
	var account Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.Role,
		&account.Status,
		&account.Phone,
		&account.Address,
		&account.Bio,
		&account.Specialization,
		&account.LicenseNumber,
		&account.ExperienceYears,
		&account.HospitalName,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("directory: scan account: %w", err)
	}
	return &account, nil
}
