package reports

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/clinic-platform/internal/directory"
)

// MaxUploadBytes is the default size cap for uploaded report files.
const MaxUploadBytes = 10 << 20

// allowedExtensions lists the file formats patients may upload.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// contentTypes maps upload extensions to the stored content type.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Report is a medical document a patient uploaded, optionally shared with one
// doctor. Everything but the attached response is immutable after upload.
type Report struct {
	ID          uuid.UUID                `json:"id"`
	PatientID   uuid.UUID                `json:"patient_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Category    directory.Specialization `json:"category"`

	// SharedWith is the doctor the report is visible to. Nil means unshared.
	SharedWith uuid.UUID `json:"shared_with,omitempty"`

	FileKey     string `json:"-"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`

	AnalysisResults string    `json:"analysis_results,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`

	// Response is attached on detail reads when one exists.
	Response *Response `json:"response,omitempty"`
}

// Shared reports whether the report is visible to a doctor.
func (r *Report) Shared() bool {
	return r.SharedWith != uuid.Nil
}

// Response is a doctor's one-off answer to a shared report.
type Response struct {
	ID              uuid.UUID `json:"id"`
	ReportID        uuid.UUID `json:"report_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	Diagnosis       string    `json:"diagnosis"`
	Prescription    string    `json:"prescription"`
	Recommendations string    `json:"recommendations"`
	Advice          string    `json:"advice,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UploadRequest carries a report upload. File metadata comes from the
// multipart header; the service enforces the size cap while reading.
type UploadRequest struct {
	Title       string
	Description string
	Category    directory.Specialization
	SharedWith  uuid.UUID
	FileName    string
	File        io.Reader
}

// RespondRequest carries a doctor's response to a shared report.
type RespondRequest struct {
	Diagnosis       string `json:"diagnosis"`
	Prescription    string `json:"prescription"`
	Recommendations string `json:"recommendations"`
	Advice          string `json:"advice"`
}
