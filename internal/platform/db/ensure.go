package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema executes a list of idempotent DDL statements. Each service runs
// its own set at startup, in addition to the versioned migrations, so a fresh
// database works even when migrations were never applied. Statements must be
// written to be safe on every restart and under concurrent process start
// (CREATE ... IF NOT EXISTS, enum creation wrapped to swallow
// duplicate_object).
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, statements []string) error {
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// EnumDDL wraps CREATE TYPE so concurrent bootstrap does not fail when the
// enum already exists.
func EnumDDL(name, values string) string {
	return fmt.Sprintf(`DO $$ BEGIN
		CREATE TYPE %s AS ENUM (%s);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`, name, values)
}
