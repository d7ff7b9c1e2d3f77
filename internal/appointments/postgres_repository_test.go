package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/carebridge/clinic-platform/internal/availability"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, newPostgresRepositoryWithDB(mock)
}

func TestPostgresCreateBooksInsideTransaction(t *testing.T) {
	mock, repo := newMockRepo(t)

	appt := &Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		When:      time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC),
		Status:    StatusPending,
		Reason:    "checkup",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT reason FROM unavailability_entries").
		WithArgs(appt.DoctorID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(appt.ID, appt.PatientID, appt.DoctorID, appt.When, appt.Status, appt.Reason).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now().UTC(), time.Now().UTC()))
	mock.ExpectCommit()
	mock.ExpectRollback()

	if err := repo.Create(context.Background(), appt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateLosesToConcurrentBlackout(t *testing.T) {
	mock, repo := newMockRepo(t)

	appt := &Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		When:      time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC),
		Status:    StatusPending,
		Reason:    "checkup",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT reason FROM unavailability_entries").
		WithArgs(appt.DoctorID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(pgxmock.NewRows([]string{"reason"}).AddRow("Conference"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), appt)
	var reject *availability.RejectError
	if !errors.As(err, &reject) {
		t.Fatalf("error = %v, want RejectError", err)
	}
	if reject.Reason != availability.ReasonDoctorUnavailable || reject.Detail != "Conference" {
		t.Errorf("rejection = %+v, want doctor_unavailable with blackout reason", reject)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByIDFoldsLegacyStatus(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "patient_id", "doctor_id", "appointment_at", "status", "reason", "created_at", "updated_at",
		}).AddRow(id, uuid.New(), uuid.New(), now, "scheduled", "checkup", now, now))

	appt, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != StatusConfirmed {
		t.Errorf("status = %q, want legacy value folded to confirmed", appt.Status)
	}
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestPostgresUpdateStatusGuardsPriorStatus(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(StatusConfirmed, id, []string{"pending"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateStatus(context.Background(), id, StatusPending, StatusConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostgresUpdateStatusAcceptsLegacyFrom(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(StatusCompleted, id, []string{"confirmed", "scheduled"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateStatus(context.Background(), id, StatusConfirmed, StatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostgresUpdateStatusConcurrentChange(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.UpdateStatus(context.Background(), id, StatusPending, StatusConfirmed)
	if !errors.Is(err, ErrStatusChanged) {
		t.Fatalf("error = %v, want ErrStatusChanged", err)
	}
}

func TestPostgresUpdateStatusMissingRow(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.UpdateStatus(context.Background(), id, StatusPending, StatusConfirmed)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestPostgresListByDoctor(t *testing.T) {
	mock, repo := newMockRepo(t)

	doctorID := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE doctor_id").
		WithArgs(doctorID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "patient_id", "doctor_id", "appointment_at", "status", "reason", "created_at", "updated_at",
		}).
			AddRow(uuid.New(), uuid.New(), doctorID, now.Add(time.Hour), "pending", "a", now, now).
			AddRow(uuid.New(), uuid.New(), doctorID, now, "confirmed", "b", now, now))

	appts, err := repo.ListByDoctor(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("got %d appointments, want 2", len(appts))
	}
}
