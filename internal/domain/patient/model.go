// Package patient is the patient registry. It owns the patients table and
// exposes the narrow internal projection other services resolve display data
// through.
package patient

import "time"

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Patient is a registry record. Date of birth is kept as an ISO date string;
// it is display data, never arithmetic input.
type Patient struct {
	ID                  int       `json:"id"`
	MedicalRecordNumber string    `json:"medical_record_number"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	DateOfBirth         string    `json:"date_of_birth"`
	Gender              string    `json:"gender"`
	Email               *string   `json:"email"`
	Phone               *string   `json:"phone"`
	Address             *string   `json:"address"`
	Notes               *string   `json:"notes"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	CreatedByID         *int      `json:"created_by_id"`
}

// Ref is the projection served on the internal surface.
type Ref struct {
	ID                  int    `json:"id"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	MedicalRecordNumber string `json:"medical_record_number"`
	IsActive            bool   `json:"is_active"`
}

func (p *Patient) Ref() Ref {
	return Ref{
		ID:                  p.ID,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		MedicalRecordNumber: p.MedicalRecordNumber,
		IsActive:            p.IsActive,
	}
}

type CreateInput struct {
	MedicalRecordNumber string  `json:"medical_record_number"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	DateOfBirth         string  `json:"date_of_birth"`
	Gender              string  `json:"gender"`
	Email               *string `json:"email"`
	Phone               *string `json:"phone"`
	Address             *string `json:"address"`
	Notes               *string `json:"notes"`
}

// UpdateInput uses pointers so omitted fields stay untouched. The medical
// record number is immutable after creation.
type UpdateInput struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      *string `json:"gender"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"is_active"`
}

// ListFilter narrows list queries.
type ListFilter struct {
	Search   string
	IsActive *bool
}
