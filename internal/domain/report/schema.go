package report

// Schema is applied idempotently at startup; versioned migrations cover
// everything beyond this baseline.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		id SERIAL PRIMARY KEY,
		patient_id INTEGER NOT NULL,
		diagnosis_code TEXT,
		content TEXT NOT NULL,
		therapy TEXT,
		lab_exams TEXT,
		referral_specialty TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_by_id INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_patient ON reports (patient_id, updated_at DESC)`,
}
