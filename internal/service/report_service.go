package service

import (
	"bytes"
	"fmt"
	"time"

	"carewise/internal/models"

	"github.com/jung-kurt/gofpdf/v2"
)

const (
	// ReportTitle heads every health assessment report.
	ReportTitle = "CareWise AI - Health Assessment Report"
	// ReportFilename is offered to the browser for download.
	ReportFilename = "carewise-health-assessment.pdf"

	reportDisclaimer = "Disclaimer: This is general health information. Consult healthcare professionals for medical advice."
)

// ReportService renders health form submissions as PDF documents.
type ReportService struct {
	now func() time.Time
}

// NewReportService creates a new report service
func NewReportService() *ReportService {
	return &ReportService{now: time.Now}
}

// HealthReport renders form and its guidance.
func (s *ReportService) HealthReport(form models.HealthForm) ([]byte, error) {
	const margin = 20.0

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(ReportTitle, false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(30, 64, 175)
	pdf.MultiCell(0, 10, ReportTitle, "", "L", false)
	pdf.Ln(4)

	date := form.CreatedAt
	if date.IsZero() {
		date = s.now()
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Date: "+date.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(heading, body string) {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 6, tr(body), "", "L", false)
		pdf.Ln(4)
	}

	section("Reported Symptoms:", form.Symptoms)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, tr("Severity: "+form.Severity), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr("Duration: "+form.Duration), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if form.AdditionalNotes != "" {
		section("Additional Notes:", form.AdditionalNotes)
	}
	section("AI Health Guidance:", form.AIResponse)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, reportDisclaimer, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render health report: %w", err)
	}
	return buf.Bytes(), nil
}
