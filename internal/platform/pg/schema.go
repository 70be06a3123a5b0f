package pg

import (
	"context"
	"database/sql"

	_ "embed"
)

//go:embed schema.sql
var schema string

// EnsureSchema applies the embedded DDL. Statements are idempotent, so
// running against an existing database is safe. Intended for development and
// test databases; production schemas are managed out of band.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
