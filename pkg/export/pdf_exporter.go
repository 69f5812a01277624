package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a Summary into a readable question/answer document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF with a header block followed by one section per answer.
func (e *PDFExporter) Render(summary Summary) ([]byte, error) {
	if len(summary.Entries) == 0 {
		return nil, fmt.Errorf("pdf requires at least one answer")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	title := summary.Title
	if title == "" {
		title = "Questionnaire Responses"
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 8, title, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(110, 110, 110)
	meta := fmt.Sprintf("Session %s", summary.SessionID)
	if summary.Respondent != "" {
		meta += fmt.Sprintf("  |  %s", summary.Respondent)
	}
	if summary.SubmittedAt != "" {
		meta += fmt.Sprintf("  |  %s", summary.SubmittedAt)
	}
	pdf.MultiCell(0, 5, meta, "", "L", false)
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)

	for i, entry := range summary.Entries {
		pdf.SetFont("Arial", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, entry.Prompt), "", "L", false)

		pdf.SetFont("Arial", "", 10)
		value := entry.Value
		if value == "" && len(entry.Files) == 0 {
			value = "(no answer)"
		}
		if value != "" {
			pdf.MultiCell(0, 5, value, "", "L", false)
		}
		for _, file := range entry.Files {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, "- "+file, "", "L", false)
		}
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
