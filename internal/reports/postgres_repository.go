package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/clinic-platform/internal/directory"
)

const uniqueViolation = "23505"

// PgxIface is the subset of pgxpool.Pool the repository uses. pgxmock
// satisfies it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores reports and responses in the relational database.
type PostgresRepository struct {
	db PgxIface
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("reports: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db PgxIface) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const reportColumns = "id, patient_id, title, description, category, shared_with, file_key, file_name, file_size, content_type, analysis_results, uploaded_at"

// CreateReport inserts a new report row.
func (r *PostgresRepository) CreateReport(ctx context.Context, report *Report) error {
	var shared *uuid.UUID
	if report.Shared() {
		shared = &report.SharedWith
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO medical_reports (id, patient_id, title, description, category, shared_with, file_key, file_name, file_size, content_type, analysis_results)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING uploaded_at
	`, report.ID, report.PatientID, report.Title, report.Description, report.Category,
		shared, report.FileKey, report.FileName, report.FileSize, report.ContentType, report.AnalysisResults).
		Scan(&report.UploadedAt)
	if err != nil {
		return fmt.Errorf("reports: insert report: %w", err)
	}
	return nil
}

// GetReport fetches one report, without its response.
func (r *PostgresRepository) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reportColumns+` FROM medical_reports WHERE id = $1`, id)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("reports: select report: %w", err)
	}
	return report, nil
}

// ListByPatient returns a patient's reports, newest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Report, error) {
	return r.list(ctx,
		`SELECT `+reportColumns+` FROM medical_reports WHERE patient_id = $1 ORDER BY uploaded_at DESC`,
		patientID)
}

// ListSharedWithDoctor returns reports shared with the doctor, newest first.
func (r *PostgresRepository) ListSharedWithDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Report, error) {
	return r.list(ctx,
		`SELECT `+reportColumns+` FROM medical_reports WHERE shared_with = $1 ORDER BY uploaded_at DESC`,
		doctorID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*Report, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("reports: list: %w", err)
	}
	defer rows.Close()

	out := []*Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("reports: scan: %w", err)
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

// CreateResponse inserts the response. The unique index on report_id turns a
// concurrent second response into ErrAlreadyResponded.
func (r *PostgresRepository) CreateResponse(ctx context.Context, resp *Response) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO doctor_responses (id, report_id, doctor_id, diagnosis, prescription, recommendations, advice)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, resp.ID, resp.ReportID, resp.DoctorID, resp.Diagnosis, resp.Prescription, resp.Recommendations, resp.Advice).
		Scan(&resp.CreatedAt, &resp.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyResponded
		}
		return fmt.Errorf("reports: insert response: %w", err)
	}
	return nil
}

// GetResponse fetches the response attached to a report.
func (r *PostgresRepository) GetResponse(ctx context.Context, reportID uuid.UUID) (*Response, error) {
	var resp Response
	err := r.db.QueryRow(ctx, `
		SELECT id, report_id, doctor_id, diagnosis, prescription, recommendations, advice, created_at, updated_at
		FROM doctor_responses
		WHERE report_id = $1
	`, reportID).Scan(&resp.ID, &resp.ReportID, &resp.DoctorID, &resp.Diagnosis,
		&resp.Prescription, &resp.Recommendations, &resp.Advice, &resp.CreatedAt, &resp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("reports: select response: %w", err)
	}
	return &resp, nil
}

// UpdateResponse rewrites the response body fields.
func (r *PostgresRepository) UpdateResponse(ctx context.Context, resp *Response) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE doctor_responses
		SET diagnosis = $1, prescription = $2, recommendations = $3, advice = $4, updated_at = NOW()
		WHERE report_id = $5
	`, resp.Diagnosis, resp.Prescription, resp.Recommendations, resp.Advice, resp.ReportID)
	if err != nil {
		return fmt.Errorf("reports: update response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResponseNotFound
	}
	return nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var report Report
	var category string
	var shared *uuid.UUID
	err := row.Scan(&report.ID, &report.PatientID, &report.Title, &report.Description,
		&category, &shared, &report.FileKey, &report.FileName, &report.FileSize,
		&report.ContentType, &report.AnalysisResults, &report.UploadedAt)
	if err != nil {
		return nil, err
	}
	report.Category = directory.Specialization(category)
	if shared != nil {
		report.SharedWith = *shared
	}
	return &report, nil
}
