package docrender

import (
	"bytes"
	"testing"
	"time"
)

func sampleDocument() ConsultationDocument {
	return ConsultationDocument{
		PatientName:     "John Mensah",
		DoctorName:      "Ada Okafor",
		DoctorLastName:  "Okafor",
		ReportTitle:     "Blood Work Panel",
		Category:        "Laboratory Report",
		UploadedAt:      time.Date(2025, 6, 8, 10, 30, 0, 0, time.UTC),
		RespondedAt:     time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC),
		Diagnosis:       "Mild iron deficiency anemia.",
		Prescription:    "Ferrous sulfate | 325mg | Once daily | 90 days",
		Recommendations: "Increase dietary iron. Re-test in three months.",
		Advice:          "Take supplements with vitamin C for absorption.",
	}
}

func TestFilename(t *testing.T) {
	doc := sampleDocument()
	got := doc.Filename()
	want := "Medical_Consultation_John_Mensah_Okafor_20250610.pdf"
	if got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
}

func TestFilenameFallbacks(t *testing.T) {
	doc := ConsultationDocument{RespondedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}
	got := doc.Filename()
	want := "Medical_Consultation_Patient_Doctor_20250102.pdf"
	if got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := Render(sampleDocument())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header")
	}
	if len(data) < 1000 {
		t.Errorf("output suspiciously small: %d bytes", len(data))
	}
}

func TestRenderWithEmptySections(t *testing.T) {
	doc := sampleDocument()
	doc.Diagnosis = ""
	doc.Prescription = ""
	doc.Recommendations = ""
	doc.Advice = "   "

	data, err := Render(doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header")
	}
}

func TestRenderPlainTextPrescription(t *testing.T) {
	doc := sampleDocument()
	doc.Prescription = "Rest and hydration.\nNo medication required."

	if _, err := Render(doc); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}
