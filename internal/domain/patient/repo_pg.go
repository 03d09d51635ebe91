package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const patientColumns = `id, medical_record_number, first_name, last_name, date_of_birth,
	gender, email, phone, address, notes, is_active, created_at, updated_at, created_by_id`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patients (
			medical_record_number, first_name, last_name, date_of_birth,
			gender, email, phone, address, notes, is_active, created_by_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		p.MedicalRecordNumber, p.FirstName, p.LastName, p.DateOfBirth,
		p.Gender, p.Email, p.Phone, p.Address, p.Notes, p.IsActive, p.CreatedByID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateMRN
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Patient, error) {
	return r.scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return r.scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE medical_record_number = $1`, mrn))
}

func (r *repoPG) GetByIDs(ctx context.Context, ids []int) ([]*Patient, error) {
	if len(ids) == 0 {
		return []*Patient{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET
			first_name = $2, last_name = $3, date_of_birth = $4, gender = $5,
			email = $6, phone = $7, address = $8, notes = $9, is_active = $10,
			updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Email, p.Phone, p.Address, p.Notes, p.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, skip int) ([]*Patient, int, error) {
	clauses := []string{}
	args := []interface{}{}

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf(`is_active = $%d`, len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			`(first_name ILIKE $%d OR last_name ILIKE $%d OR medical_record_number ILIKE $%d)`, n, n, n))
	}

	where := ``
	if len(clauses) > 0 {
		where = `WHERE ` + strings.Join(clauses, ` AND `)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM patients %s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		patientColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, skip)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	patients, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (r *repoPG) collect(rows pgx.Rows) ([]*Patient, error) {
	patients := []*Patient{}
	for rows.Next() {
		var p Patient
		if err := rows.Scan(
			&p.ID, &p.MedicalRecordNumber, &p.FirstName, &p.LastName, &p.DateOfBirth,
			&p.Gender, &p.Email, &p.Phone, &p.Address, &p.Notes,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.CreatedByID,
		); err != nil {
			return nil, err
		}
		patients = append(patients, &p)
	}
	return patients, rows.Err()
}

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.MedicalRecordNumber, &p.FirstName, &p.LastName, &p.DateOfBirth,
		&p.Gender, &p.Email, &p.Phone, &p.Address, &p.Notes,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.CreatedByID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
