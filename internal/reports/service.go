package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carebridge/clinic-platform/internal/authz"
	"github.com/carebridge/clinic-platform/internal/directory"
	"github.com/carebridge/clinic-platform/internal/docrender"
	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/internal/notify"
	"github.com/carebridge/clinic-platform/internal/observability/metrics"
	"github.com/carebridge/clinic-platform/internal/storage"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

var reportsTracer = otel.Tracer("clinic.internal.reports")

// uploadAnalysisNote is recorded on every upload until real analysis exists.
const uploadAnalysisNote = "Report uploaded successfully. Basic analysis feature available for text-based reports."

// AccountDirectory resolves accounts for share checks and notifications.
type AccountDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*directory.Account, error)
}

// Service runs the report-sharing workflow.
type Service struct {
	repo     Repository
	accounts AccountDirectory
	blobs    storage.BlobStore
	notifier *notify.Notifier
	metrics  *metrics.ClinicMetrics
	logger   *logging.Logger

	maxBytes    int64
	strictShare bool
}

// Options tunes service policy.
type Options struct {
	// MaxUploadBytes caps uploaded file size. Zero means MaxUploadBytes.
	MaxUploadBytes int64
	// StrictShare rejects uploads shared with a non-approved doctor instead
	// of clearing the share.
	StrictShare bool
}

// NewService constructs a reports service.
func NewService(repo Repository, accounts AccountDirectory, blobs storage.BlobStore, notifier *notify.Notifier, m *metrics.ClinicMetrics, logger *logging.Logger, opts Options) *Service {
	if repo == nil {
		panic("reports: repository required")
	}
	if accounts == nil {
		panic("reports: account directory required")
	}
	if blobs == nil {
		panic("reports: blob store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	maxBytes := opts.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	return &Service{
		repo:        repo,
		accounts:    accounts,
		blobs:       blobs,
		notifier:    notifier,
		metrics:     m,
		logger:      logger,
		maxBytes:    maxBytes,
		strictShare: opts.StrictShare,
	}
}

// Upload stores a new medical report for the acting patient.
func (s *Service) Upload(ctx context.Context, actor identity.Actor, req UploadRequest) (*Report, error) {
	ctx, span := reportsTracer.Start(ctx, "reports.upload")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.patient_id", actor.ID.String()))

	if actor.Role != identity.RolePatient {
		return nil, ErrPatientsOnly
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !req.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if req.File == nil || strings.TrimSpace(req.FileName) == "" {
		return nil, ErrFileRequired
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	if !allowedExtensions[ext] {
		s.metrics.ObserveUpload("unsupported_format")
		return nil, ErrUnsupportedFormat
	}

	data, err := io.ReadAll(io.LimitReader(req.File, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reports: read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrFileRequired
	}
	if int64(len(data)) > s.maxBytes {
		s.metrics.ObserveUpload("too_large")
		return nil, ErrFileTooLarge
	}

	sharedWith, err := s.resolveShare(ctx, req.SharedWith)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:              uuid.New(),
		PatientID:       actor.ID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Category:        req.Category,
		SharedWith:      sharedWith,
		FileName:        sanitizeFileName(req.FileName),
		FileSize:        int64(len(data)),
		ContentType:     contentTypes[ext],
		AnalysisResults: uploadAnalysisNote,
	}
	report.FileKey = fmt.Sprintf("reports/%s/%s", report.ID, report.FileName)

	if err := s.blobs.Put(ctx, report.FileKey, report.ContentType, bytes.NewReader(data)); err != nil {
		s.metrics.ObserveUpload("store_failed")
		span.RecordError(err)
		return nil, err
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveUpload("stored")
	s.logger.Info("report uploaded",
		"report_id", report.ID, "patient_id", actor.ID,
		"category", report.Category, "shared", report.Shared(), "size", report.FileSize)
	return report, nil
}

// resolveShare validates the shared-with target. A target that is not an
// approved doctor clears the share, or fails the upload in strict mode.
func (s *Service) resolveShare(ctx context.Context, target uuid.UUID) (uuid.UUID, error) {
	if target == uuid.Nil {
		return uuid.Nil, nil
	}
	account, err := s.accounts.Get(ctx, target)
	if err != nil && !errors.Is(err, directory.ErrAccountNotFound) {
		return uuid.Nil, err
	}
	if account != nil && account.Role == identity.RoleDoctor && account.Status == identity.StatusApproved {
		return target, nil
	}
	if s.strictShare {
		return uuid.Nil, ErrDoctorNotShareable
	}
	s.logger.Warn("share target is not an approved doctor, uploading unshared", "target_id", target)
	return uuid.Nil, nil
}

// Get returns one report with its response attached, if the actor may see it.
func (s *Service) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*Report, error) {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	res := authz.Resource{PatientID: report.PatientID, DoctorID: report.SharedWith}
	if !authz.Can(actor, authz.ActionViewReport, res) {
		return nil, ErrNotAuthorized
	}

	resp, err := s.repo.GetResponse(ctx, id)
	if err != nil && !errors.Is(err, ErrResponseNotFound) {
		return nil, err
	}
	report.Response = resp
	return report, nil
}

// ListOwn returns the actor's reports: a patient's own uploads, or the
// reports shared with the acting doctor.
func (s *Service) ListOwn(ctx context.Context, actor identity.Actor) ([]*Report, error) {
	switch actor.Role {
	case identity.RolePatient:
		return s.repo.ListByPatient(ctx, actor.ID)
	case identity.RoleDoctor:
		return s.repo.ListSharedWithDoctor(ctx, actor.ID)
	}
	return nil, ErrNotAuthorized
}

// DownloadFile returns the stored report file.
func (s *Service) DownloadFile(ctx context.Context, actor identity.Actor, id uuid.UUID) ([]byte, string, string, error) {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return nil, "", "", err
	}
	res := authz.Resource{PatientID: report.PatientID, DoctorID: report.SharedWith}
	if !authz.Can(actor, authz.ActionViewReport, res) {
		return nil, "", "", ErrNotAuthorized
	}
	data, contentType, err := s.blobs.Get(ctx, report.FileKey)
	if err != nil {
		return nil, "", "", err
	}
	if contentType == "" {
		contentType = report.ContentType
	}
	return data, contentType, report.FileName, nil
}

// Respond records the one doctor response a shared report may carry.
func (s *Service) Respond(ctx context.Context, actor identity.Actor, reportID uuid.UUID, req RespondRequest) (*Response, error) {
	ctx, span := reportsTracer.Start(ctx, "reports.respond")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.report_id", reportID.String()),
		attribute.String("clinic.doctor_id", actor.ID.String()),
	)

	report, err := s.repo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	res := authz.Resource{PatientID: report.PatientID, DoctorID: report.SharedWith}
	if !authz.Can(actor, authz.ActionRespondToReport, res) {
		if actor.Role == identity.RoleDoctor {
			return nil, ErrNotSharedWithYou
		}
		return nil, ErrNotAuthorized
	}
	if err := validateResponse(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetResponse(ctx, reportID); err == nil {
		return nil, ErrAlreadyResponded
	} else if !errors.Is(err, ErrResponseNotFound) {
		return nil, err
	}

	resp := &Response{
		ID:              uuid.New(),
		ReportID:        reportID,
		DoctorID:        actor.ID,
		Diagnosis:       strings.TrimSpace(req.Diagnosis),
		Prescription:    strings.TrimSpace(req.Prescription),
		Recommendations: strings.TrimSpace(req.Recommendations),
		Advice:          strings.TrimSpace(req.Advice),
	}
	if err := s.repo.CreateResponse(ctx, resp); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("doctor responded to report",
		"report_id", reportID, "doctor_id", actor.ID, "response_id", resp.ID)
	s.notifyResponse(ctx, actor, report)
	return resp, nil
}

// EditResponse lets the owning doctor revise their response.
func (s *Service) EditResponse(ctx context.Context, actor identity.Actor, reportID uuid.UUID, req RespondRequest) (*Response, error) {
	resp, err := s.repo.GetResponse(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionEditResponse, authz.Resource{DoctorID: resp.DoctorID}) {
		if actor.Role == identity.RoleDoctor {
			return nil, ErrNotYourResponse
		}
		return nil, ErrNotAuthorized
	}
	if err := validateResponse(req); err != nil {
		return nil, err
	}

	resp.Diagnosis = strings.TrimSpace(req.Diagnosis)
	resp.Prescription = strings.TrimSpace(req.Prescription)
	resp.Recommendations = strings.TrimSpace(req.Recommendations)
	resp.Advice = strings.TrimSpace(req.Advice)
	resp.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateResponse(ctx, resp); err != nil {
		return nil, err
	}

	s.logger.Info("doctor response updated", "report_id", reportID, "doctor_id", actor.ID)
	return resp, nil
}

// RenderConsultation renders the finalized consultation document for a
// responded report.
func (s *Service) RenderConsultation(ctx context.Context, actor identity.Actor, reportID uuid.UUID) ([]byte, string, error) {
	report, err := s.Get(ctx, actor, reportID)
	if err != nil {
		return nil, "", err
	}
	if report.Response == nil {
		return nil, "", ErrResponseNotFound
	}

	patient, err := s.accounts.Get(ctx, report.PatientID)
	if err != nil {
		return nil, "", err
	}
	doctor, err := s.accounts.Get(ctx, report.Response.DoctorID)
	if err != nil {
		return nil, "", err
	}

	doc := docrender.ConsultationDocument{
		PatientName:     patient.FullName(),
		DoctorName:      doctor.FullName(),
		DoctorLastName:  doctor.LastName,
		ReportTitle:     report.Title,
		Category:        report.Category.Display(),
		UploadedAt:      report.UploadedAt,
		RespondedAt:     report.Response.CreatedAt,
		Diagnosis:       report.Response.Diagnosis,
		Prescription:    report.Response.Prescription,
		Recommendations: report.Response.Recommendations,
		Advice:          report.Response.Advice,
	}
	data, err := docrender.Render(doc)
	if err != nil {
		s.metrics.ObserveRender("failed")
		return nil, "", err
	}
	s.metrics.ObserveRender("ok")
	return data, doc.Filename(), nil
}

func (s *Service) notifyResponse(ctx context.Context, actor identity.Actor, report *Report) {
	if s.notifier == nil {
		return
	}
	patient, err := s.accounts.Get(ctx, report.PatientID)
	if err != nil {
		s.logger.Error("lookup patient for notification failed", "error", err, "patient_id", report.PatientID)
		return
	}
	s.notifier.ReportResponded(ctx, patient.Email, patient.FullName(), actor.Name, report.Title)
}

func validateResponse(req RespondRequest) error {
	if strings.TrimSpace(req.Diagnosis) == "" ||
		strings.TrimSpace(req.Prescription) == "" ||
		strings.TrimSpace(req.Recommendations) == "" {
		return ErrResponseIncomplete
	}
	return nil
}

func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	return strings.ReplaceAll(base, " ", "_")
}
