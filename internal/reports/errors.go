package reports

import "errors"

var (
	// ErrReportNotFound is returned when no report matches the lookup.
	ErrReportNotFound = errors.New("report not found")

	// ErrResponseNotFound is returned when the report has no doctor response.
	ErrResponseNotFound = errors.New("no response found for this report")

	// ErrNotAuthorized is returned when the actor may not see or act on the report.
	ErrNotAuthorized = errors.New("not authorized for this report")

	// ErrPatientsOnly is returned when a non-patient uploads a report.
	ErrPatientsOnly = errors.New("only patients can upload reports")

	// ErrTitleRequired is returned when the upload has no title.
	ErrTitleRequired = errors.New("a report title is required")

	// ErrInvalidCategory is returned for a category outside the specialization set.
	ErrInvalidCategory = errors.New("invalid report category")

	// ErrFileRequired is returned when the upload carries no file.
	ErrFileRequired = errors.New("a report file is required")

	// ErrFileTooLarge is returned when the file exceeds the size cap.
	ErrFileTooLarge = errors.New("report file exceeds the maximum allowed size")

	// ErrUnsupportedFormat is returned for file types other than pdf, jpg,
	// jpeg or png.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrDoctorNotShareable is returned in strict-sharing mode when the
	// shared-with target is not an approved doctor.
	ErrDoctorNotShareable = errors.New("selected doctor cannot receive shared reports")

	// ErrNotSharedWithYou is returned when a doctor responds to a report that
	// was not shared with them.
	ErrNotSharedWithYou = errors.New("report is not shared with you")

	// ErrAlreadyResponded is returned when the report already has a response.
	ErrAlreadyResponded = errors.New("response already exists for this report")

	// ErrNotYourResponse is returned when a doctor edits another doctor's response.
	ErrNotYourResponse = errors.New("you can only edit your own responses")

	// ErrResponseIncomplete is returned when diagnosis, prescription or
	// recommendations are missing.
	ErrResponseIncomplete = errors.New("diagnosis, prescription and recommendations are required")
)
