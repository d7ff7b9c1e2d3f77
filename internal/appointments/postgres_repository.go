package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/clinic-platform/internal/availability"
)

// PgxIface is the subset of pgxpool.Pool the repository uses. Begin is needed
// because booking re-checks availability and inserts inside one transaction.
// pgxmock satisfies it in tests.
type PgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db PgxIface
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db PgxIface) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const appointmentColumns = "id, patient_id, doctor_id, appointment_at, status, reason, created_at, updated_at"

// Create inserts the appointment inside a transaction that first re-checks
// the doctor's blackout dates. The service performs the same check before
// calling Create, but a blackout marked between that check and the insert
// must still lose.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var reason string
	err = tx.QueryRow(ctx,
		`SELECT reason FROM unavailability_entries WHERE doctor_id = $1 AND date = $2`,
		appt.DoctorID, availability.DateOnly(appt.When),
	).Scan(&reason)
	switch {
	case err == nil:
		return &availability.RejectError{
			Reason: availability.ReasonDoctorUnavailable,
			Date:   availability.DateOnly(appt.When),
			Detail: reason,
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("appointments: availability check: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, appointment_at, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, appt.ID, appt.PatientID, appt.DoctorID, appt.When, appt.Status, appt.Reason).
		Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit: %w", err)
	}
	return nil
}

// GetByID fetches one appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select: %w", err)
	}
	return appt, nil
}

// ListByPatient returns a patient's appointments, newest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE patient_id = $1 ORDER BY appointment_at DESC`,
		patientID)
}

// ListByDoctor returns a doctor's appointments, newest first.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return r.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE doctor_id = $1 ORDER BY appointment_at DESC`,
		doctorID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	out := []*Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// UpdateStatus moves the appointment from one status to another. The WHERE
// clause carries the expected prior status so a concurrent transition makes
// this a no-op instead of a lost update.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	fromStatuses := []string{string(from)}
	if from == StatusConfirmed {
		// Rows written before the rename may still carry the legacy value.
		fromStatuses = append(fromStatuses, legacyScheduled)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`, to, id, fromStatuses)
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("appointments: update status: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusChanged
	}
	return nil
}

// scanAppointment reads one row, folding any legacy status value stored in
// the database.
func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	var rawStatus string
	err := row.Scan(&appt.ID, &appt.PatientID, &appt.DoctorID, &appt.When,
		&rawStatus, &appt.Reason, &appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	status, ok := ParseStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("unknown appointment status %q", rawStatus)
	}
	appt.Status = status
	return &appt, nil
}
