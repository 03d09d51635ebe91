package pdfgen

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"
)

const placeholder = "—"

// Builder renders medical report PDFs on an A4 page with a hospital
// letterhead header and footer.
type Builder struct {
	letterhead Letterhead
}

func NewBuilder(letterhead Letterhead) *Builder {
	if letterhead.Name == "" {
		letterhead.Name = "AIOC Hospital"
	}
	return &Builder{letterhead: letterhead}
}

// Build renders the report and returns the PDF bytes.
func (b *Builder) Build(req Request) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()

	pdf.SetMargins(20, 32, 20)
	pdf.SetAutoPageBreak(true, 28)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetTextColor(26, 74, 122)
		pdf.SetXY(20, 12)
		pdf.CellFormat(pageW-40, 8, tr(b.letterhead.Name), "", 0, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(20, 21)
		pdf.CellFormat(pageW-40, 5, tr("Patient: "+req.PatientName), "", 0, "C", false, 0, "")
		pdf.Line(20, 28, pageW-20, 28)
		pdf.SetY(32)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(128, 128, 128)
		y := pageH - 16
		for _, line := range []string{b.letterhead.Name, b.letterhead.Address, b.letterhead.Phone} {
			if line == "" {
				continue
			}
			pdf.SetXY(20, y)
			pdf.CellFormat(pageW-40, 3, tr(line), "", 0, "C", false, 0, "")
			y += 3
		}
	})

	pdf.AddPage()

	title := func(text string) {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 9, tr(text), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}
	heading := func(text string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 6, tr(text), "", 1, "C", false, 0, "")
	}
	body := func(text string) {
		if text == "" {
			text = placeholder
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 5, tr(text), "", "L", false)
		pdf.Ln(2)
	}

	r := req.Report

	title("Medical Report")

	if r.DiagnosisCode != nil && *r.DiagnosisCode != "" {
		heading("Diagnosis code")
		body(*r.DiagnosisCode)
	}

	heading("Report content")
	body(r.Content)

	heading("Therapy")
	body(deref(r.Therapy))

	heading("Lab exams")
	body(deref(r.LabExams))

	heading("Referral")
	body(deref(r.ReferralSpecialty))

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5,
		tr("Created: "+fmtTime(r.CreatedAt)+" · Updated: "+fmtTime(r.UpdatedAt)),
		"", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return placeholder
	}
	return t.Format("02/01/2006 15:04")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
