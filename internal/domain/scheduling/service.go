package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/registry"
)

var (
	ErrPastDate      = errors.New("appointment scheduled in the past")
	ErrInvalidStatus = errors.New("invalid status")
	ErrValidation    = errors.New("invalid appointment data")
)

type Service struct {
	doctors  DoctorRepository
	appts    AppointmentRepository
	patients registry.Source
	logger   zerolog.Logger

	// now is swappable so expiry tests can pin the clock.
	now func() time.Time
}

func NewService(doctors DoctorRepository, appts AppointmentRepository, patients registry.Source, logger zerolog.Logger) *Service {
	return &Service{
		doctors:  doctors,
		appts:    appts,
		patients: patients,
		logger:   logger.With().Str("component", "scheduling").Logger(),
		now:      time.Now,
	}
}

// -- Doctors --

func (s *Service) CreateDoctor(ctx context.Context, input CreateDoctorInput) (*Doctor, error) {
	if input.UserID <= 0 || input.DisplayName == "" || input.Specialty == "" {
		return nil, ErrValidation
	}
	specialty := input.Specialty
	d := &Doctor{
		UserID:       input.UserID,
		DisplayName:  input.DisplayName,
		Specialty:    &specialty,
		SubSpecialty: input.SubSpecialty,
		IsActive:     true,
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDoctor(ctx context.Context, id int) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// MyDoctor returns the active doctor profile for a user, or nil when the
// user has none. Not having a profile is a normal state, not an error.
func (s *Service) MyDoctor(ctx context.Context, userID int) (*Doctor, error) {
	d, err := s.doctors.GetActiveByUserID(ctx, userID)
	if errors.Is(err, ErrDoctorNotFound) {
		return nil, nil
	}
	return d, err
}

func (s *Service) UpdateDoctor(ctx context.Context, id int, input UpdateDoctorInput) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != nil {
		d.DisplayName = *input.DisplayName
	}
	if input.Specialty != nil {
		d.Specialty = input.Specialty
	}
	if input.SubSpecialty != nil {
		d.SubSpecialty = input.SubSpecialty
	}
	if input.IsActive != nil {
		d.IsActive = *input.IsActive
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeactivateDoctor(ctx context.Context, id int) error {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	d.IsActive = false
	return s.doctors.Update(ctx, d)
}

func (s *Service) ListDoctors(ctx context.Context, isActive *bool, limit, skip int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, isActive, limit, skip)
}

// -- Appointments --

func (s *Service) rejectPast(scheduledAt time.Time) error {
	today := s.now()
	y, m, d := scheduledAt.Date()
	scheduledDate := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	ty, tm, td := today.Date()
	if scheduledDate.Before(time.Date(ty, tm, td, 0, 0, 0, 0, today.Location())) {
		return ErrPastDate
	}
	return nil
}

// expireOverdue persists the lazy expiry rule before any read of appointment
// state. There is no background sweep; reads pay for their own consistency.
func (s *Service) expireOverdue(ctx context.Context) {
	n, err := s.appts.CancelOverdue(ctx, ExpiryCutoff(s.now()))
	if err != nil {
		s.logger.Warn().Err(err).Msg("overdue appointment sweep failed")
		return
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("cancelled overdue appointments")
	}
}

func (s *Service) CreateAppointment(ctx context.Context, input CreateAppointmentInput, createdBy int) (*Appointment, error) {
	if input.PatientID <= 0 || input.DoctorID <= 0 || input.ScheduledAt.IsZero() {
		return nil, ErrValidation
	}
	if input.DurationMinutes == 0 {
		input.DurationMinutes = 30
	}
	if input.DurationMinutes < 0 {
		return nil, ErrValidation
	}
	if err := s.rejectPast(input.ScheduledAt); err != nil {
		return nil, err
	}
	if _, err := s.doctors.GetByID(ctx, input.DoctorID); err != nil {
		return nil, err
	}

	a := &Appointment{
		PatientID:       input.PatientID,
		DoctorID:        input.DoctorID,
		ScheduledAt:     input.ScheduledAt,
		DurationMinutes: input.DurationMinutes,
		Status:          StatusScheduled,
		Notes:           input.Notes,
		CreatedByID:     &createdBy,
	}
	if err := s.appts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int) (*Appointment, error) {
	s.expireOverdue(ctx)
	return s.appts.GetByID(ctx, id)
}

func (s *Service) UpdateAppointment(ctx context.Context, id int, input UpdateAppointmentInput) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ScheduledAt != nil {
		if err := s.rejectPast(*input.ScheduledAt); err != nil {
			return nil, err
		}
		a.ScheduledAt = *input.ScheduledAt
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes <= 0 {
			return nil, ErrValidation
		}
		a.DurationMinutes = *input.DurationMinutes
	}
	if input.Status != nil {
		if !ValidStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		a.Status = *input.Status
	}
	if input.Notes != nil {
		a.Notes = input.Notes
	}

	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CancelAppointment is the delete semantics: the row stays, the status flips.
func (s *Service) CancelAppointment(ctx context.Context, id int) error {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	a.Status = StatusCancelled
	return s.appts.Update(ctx, a)
}

func (s *Service) ListAppointments(ctx context.Context, filter AppointmentFilter, limit, skip int) ([]*Appointment, int, error) {
	if filter.Status != nil && !ValidStatus(*filter.Status) {
		return nil, 0, ErrInvalidStatus
	}
	s.expireOverdue(ctx)
	return s.appts.List(ctx, filter, limit, skip)
}

// RecentAppointments backs the dashboard activity feed, ordered by last
// modification.
func (s *Service) RecentAppointments(ctx context.Context, limit int) ([]*Detail, error) {
	details, err := s.appts.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := s.fillPatientNames(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// Calendar returns the detailed appointments in a date window.
func (s *Service) Calendar(ctx context.Context, from, to time.Time, doctorID, patientID *int) ([]*Detail, error) {
	s.expireOverdue(ctx)
	details, err := s.appts.ListRange(ctx, from, to, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	if err := s.fillPatientNames(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// fillPatientNames resolves patient display names through the registry in
// one batch call. Unknown ids leave the name nil; a registry outage is the
// caller's 503.
func (s *Service) fillPatientNames(ctx context.Context, details []*Detail) error {
	if len(details) == 0 {
		return nil
	}

	seen := map[int]bool{}
	ids := []int{}
	for _, d := range details {
		if !seen[d.PatientID] {
			seen[d.PatientID] = true
			ids = append(ids, d.PatientID)
		}
	}

	refs, err := s.patients.Patients(ctx, ids)
	if err != nil {
		return err
	}

	names := map[int]string{}
	for _, ref := range refs {
		names[ref.ID] = ref.FullName()
	}
	for _, d := range details {
		if name, ok := names[d.PatientID]; ok {
			n := name
			d.PatientName = &n
		}
	}
	return nil
}
