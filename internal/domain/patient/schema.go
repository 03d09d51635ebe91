package patient

import "github.com/siesta94/aioc-hospital-microservices/internal/platform/db"

// Schema is applied idempotently at startup; versioned migrations cover
// everything beyond this baseline.
var Schema = []string{
	db.EnumDDL("gender", `'male', 'female', 'other'`),
	`CREATE TABLE IF NOT EXISTS patients (
		id SERIAL PRIMARY KEY,
		medical_record_number TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		date_of_birth TEXT NOT NULL,
		gender gender NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_by_id INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_patients_mrn ON patients (medical_record_number)`,
	`CREATE INDEX IF NOT EXISTS idx_patients_name ON patients (last_name, first_name)`,
}
