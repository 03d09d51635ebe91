package scheduling

import "github.com/siesta94/aioc-hospital-microservices/internal/platform/db"

// Schema is applied idempotently at startup; versioned migrations cover
// everything beyond this baseline.
var Schema = []string{
	db.EnumDDL("appointment_status", `'scheduled', 'completed', 'cancelled', 'no_show'`),
	`CREATE TABLE IF NOT EXISTS doctors (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		specialty TEXT,
		sub_specialty TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id SERIAL PRIMARY KEY,
		patient_id INTEGER NOT NULL,
		doctor_id INTEGER NOT NULL REFERENCES doctors(id) ON DELETE CASCADE,
		scheduled_at TIMESTAMPTZ NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 30,
		status appointment_status NOT NULL DEFAULT 'scheduled',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_by_id INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_scheduled_at ON appointments (scheduled_at)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments (patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_doctor ON appointments (doctor_id)`,
}
