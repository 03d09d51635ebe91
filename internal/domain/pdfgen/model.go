package pdfgen

import "time"

// Payload is the report body to render. Optional fields render as an em
// dash placeholder.
type Payload struct {
	DiagnosisCode     *string    `json:"diagnosis_code"`
	Content           string     `json:"content"`
	Therapy           *string    `json:"therapy"`
	LabExams          *string    `json:"lab_exams"`
	ReferralSpecialty *string    `json:"referral_specialty"`
	CreatedAt         *time.Time `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
}

// Request is the input of POST /api/generate/report.
type Request struct {
	PatientName string  `json:"patient_name"`
	Report      Payload `json:"report"`
}

// Letterhead is the hospital branding printed on every page.
type Letterhead struct {
	Name    string
	Address string
	Phone   string
}
