package identity

import "github.com/siesta94/aioc-hospital-microservices/internal/platform/db"

// Schema is applied idempotently at startup so a fresh database works without
// a separate migration step. Versioned migrations cover everything beyond
// this baseline.
var Schema = []string{
	db.EnumDDL("user_role", `'user', 'admin'`),
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		role user_role NOT NULL DEFAULT 'user',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		full_name TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_username ON users (username)`,
}
