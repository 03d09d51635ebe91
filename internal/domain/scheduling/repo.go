package scheduling

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorExists        = errors.New("doctor already exists for this user")
)

// DoctorRepository defines the persistence interface for doctors.
type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int) (*Doctor, error)
	// GetActiveByUserID backs GET /api/doctors/me.
	GetActiveByUserID(ctx context.Context, userID int) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	List(ctx context.Context, isActive *bool, limit, skip int) ([]*Doctor, int, error)
}

// AppointmentRepository defines the persistence interface for appointments.
// Rows come back with the doctor's display name joined in; patient names are
// the service layer's concern.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	List(ctx context.Context, filter AppointmentFilter, limit, skip int) ([]*Appointment, int, error)
	ListRecent(ctx context.Context, limit int) ([]*Detail, error)
	ListRange(ctx context.Context, from, to time.Time, doctorID, patientID *int) ([]*Detail, error)
	// CancelOverdue flips scheduled appointments dated on or before cutoff
	// to cancelled. Idempotent; runs before every read of appointment state.
	CancelOverdue(ctx context.Context, cutoff time.Time) (int64, error)
}
