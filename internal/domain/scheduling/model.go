// Package scheduling owns doctors and appointments. Patient display data is
// resolved live through the registry client; there is no local patient
// mirror to drift.
package scheduling

import "time"

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Doctor links a login-service user to a bookable profile. UserID is a
// cross-service reference, deliberately not a foreign key.
type Doctor struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Specialty    *string   `json:"specialty"`
	SubSpecialty *string   `json:"sub_specialty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Appointment struct {
	ID              int       `json:"id"`
	PatientID       int       `json:"patient_id"`
	DoctorID        int       `json:"doctor_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatedByID     *int      `json:"created_by_id"`
}

// Detail is an appointment enriched with display names for the dashboard and
// calendar views. Either name may be nil when the reference cannot be
// resolved.
type Detail struct {
	Appointment
	DoctorDisplayName *string `json:"doctor_display_name"`
	PatientName       *string `json:"patient_name"`
}

type CreateDoctorInput struct {
	UserID       int     `json:"user_id"`
	DisplayName  string  `json:"display_name"`
	Specialty    string  `json:"specialty"`
	SubSpecialty *string `json:"sub_specialty"`
}

type UpdateDoctorInput struct {
	DisplayName  *string `json:"display_name"`
	Specialty    *string `json:"specialty"`
	SubSpecialty *string `json:"sub_specialty"`
	IsActive     *bool   `json:"is_active"`
}

type CreateAppointmentInput struct {
	PatientID       int       `json:"patient_id"`
	DoctorID        int       `json:"doctor_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           *string   `json:"notes"`
}

type UpdateAppointmentInput struct {
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Status          *string    `json:"status"`
	Notes           *string    `json:"notes"`
}

// AppointmentFilter narrows appointment list queries.
type AppointmentFilter struct {
	PatientID *int
	DoctorID  *int
	From      *time.Time
	To        *time.Time
	Status    *string
}
