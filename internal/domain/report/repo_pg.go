package report

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `id, patient_id, diagnosis_code, content, therapy,
	lab_exams, referral_specialty, created_at, updated_at, created_by_id`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, rep *Report) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO reports (
			patient_id, diagnosis_code, content, therapy,
			lab_exams, referral_specialty, created_by_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		rep.PatientID, rep.DiagnosisCode, rep.Content, rep.Therapy,
		rep.LabExams, rep.ReferralSpecialty, rep.CreatedByID,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
}

func (r *repoPG) Get(ctx context.Context, patientID, reportID int) (*Report, error) {
	return r.scanReport(r.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1 AND patient_id = $2`, reportID, patientID))
}

func (r *repoPG) Update(ctx context.Context, rep *Report) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE reports SET
			diagnosis_code = $3, content = $4, therapy = $5,
			lab_exams = $6, referral_specialty = $7, updated_at = NOW()
		WHERE id = $1 AND patient_id = $2
		RETURNING updated_at`,
		rep.ID, rep.PatientID, rep.DiagnosisCode, rep.Content, rep.Therapy,
		rep.LabExams, rep.ReferralSpecialty,
	).Scan(&rep.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete is a hard delete. Reports have no soft-delete flag.
func (r *repoPG) Delete(ctx context.Context, patientID, reportID int) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reports WHERE id = $1 AND patient_id = $2`, reportID, patientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID, limit, skip int) ([]*Report, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reports WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+reportColumns+` FROM reports
		WHERE patient_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reports := []*Report{}
	for rows.Next() {
		var rep Report
		if err := rows.Scan(
			&rep.ID, &rep.PatientID, &rep.DiagnosisCode, &rep.Content, &rep.Therapy,
			&rep.LabExams, &rep.ReferralSpecialty, &rep.CreatedAt, &rep.UpdatedAt, &rep.CreatedByID,
		); err != nil {
			return nil, 0, err
		}
		reports = append(reports, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *repoPG) scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(
		&rep.ID, &rep.PatientID, &rep.DiagnosisCode, &rep.Content, &rep.Therapy,
		&rep.LabExams, &rep.ReferralSpecialty, &rep.CreatedAt, &rep.UpdatedAt, &rep.CreatedByID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}
