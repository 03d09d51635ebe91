package report

import "time"

// Report is a clinical report attached to a patient. The patient and author
// ids point at rows owned by other services, so there are no foreign keys
// here.
type Report struct {
	ID                int       `json:"id"`
	PatientID         int       `json:"patient_id"`
	DiagnosisCode     *string   `json:"diagnosis_code"`
	Content           string    `json:"content"`
	Therapy           *string   `json:"therapy"`
	LabExams          *string   `json:"lab_exams"`
	ReferralSpecialty *string   `json:"referral_specialty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	CreatedByID       *int      `json:"created_by_id"`
}

type CreateInput struct {
	DiagnosisCode     *string `json:"diagnosis_code"`
	Content           string  `json:"content"`
	Therapy           *string `json:"therapy"`
	LabExams          *string `json:"lab_exams"`
	ReferralSpecialty *string `json:"referral_specialty"`
}

// UpdateInput carries partial updates; nil fields are left untouched.
type UpdateInput struct {
	DiagnosisCode     *string `json:"diagnosis_code"`
	Content           *string `json:"content"`
	Therapy           *string `json:"therapy"`
	LabExams          *string `json:"lab_exams"`
	ReferralSpecialty *string `json:"referral_specialty"`
}
