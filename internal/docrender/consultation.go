// Package docrender renders doctor consultation responses as PDF documents
// patients can download and keep with their medical records.
package docrender

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// ConsultationDocument carries everything the consultation PDF shows.
type ConsultationDocument struct {
	PatientName    string
	DoctorName     string
	DoctorLastName string

	ReportTitle string
	Category    string
	UploadedAt  time.Time
	RespondedAt time.Time

	Diagnosis       string
	Prescription    string
	Recommendations string
	Advice          string
}

// Filename returns the download name for the rendered document, e.g.
// Medical_Consultation_John_Mensah_Okafor_20250610.pdf.
func (d ConsultationDocument) Filename() string {
	patient := strings.ReplaceAll(strings.TrimSpace(d.PatientName), " ", "_")
	if patient == "" {
		patient = "Patient"
	}
	doctor := strings.TrimSpace(d.DoctorLastName)
	if doctor == "" {
		doctor = "Doctor"
	}
	return fmt.Sprintf("Medical_Consultation_%s_%s_%s.pdf",
		patient, doctor, d.RespondedAt.Format("20060102"))
}

// Render produces the consultation PDF.
func Render(doc ConsultationDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 36

	// Header band.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(26, 35, 126)
	pdf.CellFormat(contentWidth/2, 6, "HEALTHCARE CONSULTATION SYSTEM", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentWidth/2, 6, "CONFIDENTIAL MEDICAL REPORT", "", 1, "R", false, 0, "")
	pdf.SetDrawColor(26, 35, 126)
	pdf.Line(18, pdf.GetY()+1, 18+contentWidth, pdf.GetY()+1)
	pdf.Ln(8)

	// Title.
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(contentWidth, 9, "COMPREHENSIVE MEDICAL CONSULTATION REPORT", "", "C", false)
	pdf.Ln(6)

	// Patient and consultant block.
	sectionTitle(pdf, "PATIENT & CONSULTANT INFORMATION")
	pdf.SetFillColor(26, 35, 126)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentWidth/2, 8, "PATIENT INFORMATION", "1", 0, "C", true, 0, "")
	pdf.CellFormat(contentWidth/2, 8, "CONSULTANT INFORMATION", "1", 1, "C", true, 0, "")
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(38, 50, 56)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentWidth/2, 10, "Patient Name: "+orNotSpecified(doc.PatientName), "1", 0, "L", true, 0, "")
	pdf.CellFormat(contentWidth/2, 10, "Consultant Name: Dr. "+orNotSpecified(doc.DoctorName), "1", 1, "L", true, 0, "")
	pdf.Ln(6)

	// Report details.
	sectionTitle(pdf, "REPORT DETAILS")
	detailRow(pdf, contentWidth, "Report Title", doc.ReportTitle)
	detailRow(pdf, contentWidth, "Medical Category", doc.Category)
	detailRow(pdf, contentWidth, "Report Upload Date", doc.UploadedAt.Format("January 2, 2006 at 3:04 PM"))
	detailRow(pdf, contentWidth, "Consultation Date", doc.RespondedAt.Format("January 2, 2006 at 3:04 PM"))
	pdf.Ln(6)

	sectionTitle(pdf, "MEDICAL DIAGNOSIS & FINDINGS")
	highlightText(pdf, contentWidth, orDefault(doc.Diagnosis, "No diagnosis provided."))
	pdf.Ln(4)

	sectionTitle(pdf, "PRESCRIPTION DETAILS")
	renderPrescription(pdf, contentWidth, doc.Prescription)
	pdf.Ln(4)

	sectionTitle(pdf, "RECOMMENDATIONS & FOLLOW-UP INSTRUCTIONS")
	highlightText(pdf, contentWidth, orDefault(doc.Recommendations, "No recommendations provided."))
	pdf.Ln(4)

	if strings.TrimSpace(doc.Advice) != "" {
		sectionTitle(pdf, "MEDICAL ADVICE & PRECAUTIONS")
		bodyText(pdf, contentWidth, doc.Advice)
		pdf.Ln(4)
	}

	// Standing notes go on their own page.
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(198, 40, 40)
	pdf.MultiCell(contentWidth, 8, "IMPORTANT MEDICAL INFORMATION", "", "C", false)
	pdf.Ln(4)

	notes := [][2]string{
		{"Confidentiality Notice", "This document contains confidential medical information. Unauthorized disclosure is prohibited."},
		{"Medication Adherence", "Take all medications as prescribed. Do not stop medication without consulting your doctor."},
		{"Side Effects", "Report any unusual symptoms or side effects to your doctor immediately."},
		{"Follow-up Appointments", "Keep all scheduled follow-up appointments for optimal care."},
		{"Emergency Contact", "For medical emergencies, contact emergency services or go to the nearest hospital."},
		{"Lifestyle Recommendations", "Follow dietary, exercise, and lifestyle recommendations as advised."},
		{"Document Storage", "Keep this document with your medical records for future reference."},
		{"Validity", "This consultation is valid until your next scheduled follow-up appointment."},
	}
	for i, note := range notes {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(26, 35, 126)
		pdf.MultiCell(contentWidth, 5, fmt.Sprintf("%d. %s", i+1, note[0]), "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(69, 90, 100)
		pdf.SetX(pdf.GetX() + 8)
		pdf.MultiCell(contentWidth-8, 5, note[1], "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(8)

	// Signature block.
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(38, 50, 56)
	pdf.CellFormat(contentWidth/2, 6, "______________________________", "", 0, "C", false, 0, "")
	pdf.CellFormat(contentWidth/2, 6, "______________________________", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentWidth/2, 6, "Patient's Acknowledgement", "", 0, "C", false, 0, "")
	pdf.CellFormat(contentWidth/2, 6, "Doctor's Signature", "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(84, 110, 122)
	pdf.CellFormat(contentWidth/2, 5, "Date: ________________________", "", 0, "C", false, 0, "")
	pdf.CellFormat(contentWidth/2, 5, "Consultation Date: "+doc.RespondedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentWidth/2, 5, "", "", 0, "C", false, 0, "")
	pdf.CellFormat(contentWidth/2, 5, "Dr. "+orNotSpecified(doc.DoctorName), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	// Footer.
	pdf.SetDrawColor(150, 150, 150)
	pdf.Line(18, pdf.GetY(), 18+contentWidth, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(117, 117, 117)
	pdf.MultiCell(contentWidth, 4, "ELECTRONICALLY GENERATED MEDICAL DOCUMENT - VALID WITHOUT PHYSICAL SIGNATURE", "", "C", false)
	pdf.MultiCell(contentWidth, 4, "Document Generated: "+time.Now().Format("2006-01-02 at 15:04:05"), "", "C", false)
	pdf.MultiCell(contentWidth, 4, "Healthcare Consultation System", "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("docrender: render consultation: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(21, 101, 192)
	pdf.MultiCell(0, 7, title, "", "L", false)
	pdf.Ln(1)
}

func detailRow(pdf *fpdf.Fpdf, contentWidth float64, label, value string) {
	pdf.SetFillColor(232, 234, 246)
	pdf.SetTextColor(38, 50, 56)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentWidth/3, 8, label, "1", 0, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentWidth*2/3, 8, value, "1", 1, "L", false, 0, "")
}

func highlightText(pdf *fpdf.Fpdf, contentWidth float64, text string) {
	pdf.SetFillColor(227, 242, 253)
	pdf.SetTextColor(38, 50, 56)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(contentWidth, 6, text, "1", "L", true)
}

func bodyText(pdf *fpdf.Fpdf, contentWidth float64, text string) {
	pdf.SetTextColor(38, 50, 56)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(contentWidth, 6, text, "", "L", false)
}

// renderPrescription formats pipe-delimited prescription lines as a
// medication table and everything else as plain text. Doctors are told to
// enter "Medication | Dosage | Frequency | Duration" per line.
func renderPrescription(pdf *fpdf.Fpdf, contentWidth float64, prescription string) {
	text := strings.TrimSpace(prescription)
	if text == "" {
		bodyText(pdf, contentWidth, "No prescription provided.")
		return
	}

	lines := strings.Split(text, "\n")
	tabular := false
	for _, line := range lines {
		if strings.Contains(line, "|") {
			tabular = true
			break
		}
	}
	if !tabular || len(lines) < 2 {
		bodyText(pdf, contentWidth, text)
		return
	}

	colWidth := contentWidth / 4
	pdf.SetFillColor(13, 71, 161)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	for _, header := range []string{"Medication", "Dosage", "Frequency", "Duration"} {
		pdf.CellFormat(colWidth, 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(38, 50, 56)
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		for len(parts) < 4 {
			parts = append(parts, "")
		}
		for i := 0; i < 4; i++ {
			pdf.CellFormat(colWidth, 7, strings.TrimSpace(parts[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func orNotSpecified(s string) string {
	return orDefault(s, "Not specified")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
