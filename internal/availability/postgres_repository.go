package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PgxIface is the subset of pgxpool.Pool the repository uses. pgxmock
// satisfies it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores blackout entries in the relational database.
type PostgresRepository struct {
	db PgxIface
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db PgxIface) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new entry. The unique index on (doctor_id, date) turns a
// concurrent duplicate into ErrDateAlreadyMarked instead of a second row.
func (r *PostgresRepository) Create(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO unavailability_entries (id, doctor_id, date, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, entry.ID, entry.DoctorID, DateOnly(entry.Date), entry.Reason).
		Scan(&entry.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDateAlreadyMarked
		}
		return fmt.Errorf("availability: insert entry: %w", err)
	}
	return nil
}

// GetByID fetches an entry by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	query := `SELECT id, doctor_id, date, reason, created_at FROM unavailability_entries WHERE id = $1`
	var entry Entry
	err := r.db.QueryRow(ctx, query, id).
		Scan(&entry.ID, &entry.DoctorID, &entry.Date, &entry.Reason, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("availability: select entry: %w", err)
	}
	return &entry, nil
}

// ListByDoctor returns a doctor's entries, newest date first.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Entry, error) {
	query := `
		SELECT id, doctor_id, date, reason, created_at
		FROM unavailability_entries
		WHERE doctor_id = $1
		ORDER BY date DESC
	`
	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("availability: list entries: %w", err)
	}
	defer rows.Close()

	out := []*Entry{}
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.DoctorID, &entry.Date, &entry.Reason, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("availability: scan entry: %w", err)
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}

// FindByDoctorDate returns the entry for (doctor, date) or ErrEntryNotFound.
func (r *PostgresRepository) FindByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*Entry, error) {
	query := `
		SELECT id, doctor_id, date, reason, created_at
		FROM unavailability_entries
		WHERE doctor_id = $1 AND date = $2
	`
	var entry Entry
	err := r.db.QueryRow(ctx, query, doctorID, DateOnly(date)).
		Scan(&entry.ID, &entry.DoctorID, &entry.Date, &entry.Reason, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("availability: select entry: %w", err)
	}
	return &entry, nil
}

// Delete removes an entry.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM unavailability_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("availability: delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
