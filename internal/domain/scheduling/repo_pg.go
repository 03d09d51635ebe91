package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const doctorColumns = `id, user_id, display_name, specialty, sub_specialty, is_active, created_at`

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO doctors (user_id, display_name, specialty, sub_specialty, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		d.UserID, d.DisplayName, d.Specialty, d.SubSpecialty, d.IsActive,
	).Scan(&d.ID, &d.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDoctorExists
	}
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int) (*Doctor, error) {
	return r.scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetActiveByUserID(ctx context.Context, userID int) (*Doctor, error) {
	return r.scanDoctor(r.pool.QueryRow(ctx,
		`SELECT `+doctorColumns+` FROM doctors WHERE user_id = $1 AND is_active`, userID))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctors SET display_name = $2, specialty = $3, sub_specialty = $4, is_active = $5
		WHERE id = $1`,
		d.ID, d.DisplayName, d.Specialty, d.SubSpecialty, d.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, isActive *bool, limit, skip int) ([]*Doctor, int, error) {
	where := ``
	args := []interface{}{}
	if isActive != nil {
		where = `WHERE is_active = $1`
		args = append(args, *isActive)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM doctors %s ORDER BY display_name LIMIT $%d OFFSET $%d`,
		doctorColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, skip)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	doctors := []*Doctor{}
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.UserID, &d.DisplayName, &d.Specialty, &d.SubSpecialty, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, &d)
	}
	return doctors, total, rows.Err()
}

func (r *doctorRepoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.DisplayName, &d.Specialty, &d.SubSpecialty, &d.IsActive, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const apptColumns = `a.id, a.patient_id, a.doctor_id, a.scheduled_at, a.duration_minutes,
	a.status, a.notes, a.created_at, a.updated_at, a.created_by_id`

type apptRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &apptRepoPG{pool: pool}
}

func (r *apptRepoPG) Create(ctx context.Context, a *Appointment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, scheduled_at, duration_minutes, status, notes, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.ScheduledAt, a.DurationMinutes, a.Status, a.Notes, a.CreatedByID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *apptRepoPG) GetByID(ctx context.Context, id int) (*Appointment, error) {
	var a Appointment
	err := r.pool.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments a WHERE a.id = $1`, id).Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.ScheduledAt, &a.DurationMinutes,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt, &a.CreatedByID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *apptRepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET
			scheduled_at = $2, duration_minutes = $3, status = $4, notes = $5, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.ScheduledAt, a.DurationMinutes, a.Status, a.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *apptRepoPG) List(ctx context.Context, filter AppointmentFilter, limit, skip int) ([]*Appointment, int, error) {
	clauses := []string{}
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.PatientID != nil {
		add(`a.patient_id = $%d`, *filter.PatientID)
	}
	if filter.DoctorID != nil {
		add(`a.doctor_id = $%d`, *filter.DoctorID)
	}
	if filter.From != nil {
		add(`a.scheduled_at >= $%d`, *filter.From)
	}
	if filter.To != nil {
		add(`a.scheduled_at <= $%d`, *filter.To)
	}
	if filter.Status != nil {
		add(`a.status = $%d`, *filter.Status)
	}

	where := ``
	if len(clauses) > 0 {
		where = `WHERE ` + strings.Join(clauses, ` AND `)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments a `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments a %s ORDER BY a.scheduled_at LIMIT $%d OFFSET $%d`,
		apptColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, skip)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	appts := []*Appointment{}
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.DoctorID, &a.ScheduledAt, &a.DurationMinutes,
			&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt, &a.CreatedByID,
		); err != nil {
			return nil, 0, err
		}
		appts = append(appts, &a)
	}
	return appts, total, rows.Err()
}

func (r *apptRepoPG) ListRecent(ctx context.Context, limit int) ([]*Detail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`, d.display_name
		FROM appointments a
		LEFT JOIN doctors d ON d.id = a.doctor_id
		ORDER BY a.updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectDetails(rows)
}

func (r *apptRepoPG) ListRange(ctx context.Context, from, to time.Time, doctorID, patientID *int) ([]*Detail, error) {
	clauses := []string{`a.scheduled_at >= $1`, `a.scheduled_at <= $2`}
	args := []interface{}{from, to}
	if doctorID != nil {
		args = append(args, *doctorID)
		clauses = append(clauses, fmt.Sprintf(`a.doctor_id = $%d`, len(args)))
	}
	if patientID != nil {
		args = append(args, *patientID)
		clauses = append(clauses, fmt.Sprintf(`a.patient_id = $%d`, len(args)))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`, d.display_name
		FROM appointments a
		LEFT JOIN doctors d ON d.id = a.doctor_id
		WHERE `+strings.Join(clauses, ` AND `)+`
		ORDER BY a.scheduled_at`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectDetails(rows)
}

func (r *apptRepoPG) CancelOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'scheduled' AND scheduled_at::date <= $1::date`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *apptRepoPG) collectDetails(rows pgx.Rows) ([]*Detail, error) {
	details := []*Detail{}
	for rows.Next() {
		var d Detail
		if err := rows.Scan(
			&d.ID, &d.PatientID, &d.DoctorID, &d.ScheduledAt, &d.DurationMinutes,
			&d.Status, &d.Notes, &d.CreatedAt, &d.UpdatedAt, &d.CreatedByID,
			&d.DoctorDisplayName,
		); err != nil {
			return nil, err
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
