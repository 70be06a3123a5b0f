// Package pg holds small helpers shared by the PostgreSQL store variants.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"campus/pkg/platform/sentinel"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NullUUID converts a UUID to its nullable column form; the nil UUID maps to
// SQL NULL.
func NullUUID(u uuid.UUID) sql.Null[uuid.UUID] {
	return sql.Null[uuid.UUID]{V: u, Valid: u != uuid.Nil}
}

// TranslateError maps driver-level failures onto sentinel errors so services
// can distinguish transient store trouble from terminal conditions.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return fmt.Errorf("%s: %w", pqErr.Message, sentinel.ErrConflict)
		case "serialization_failure", "deadlock_detected":
			return fmt.Errorf("%s: %w", pqErr.Message, sentinel.ErrUnavailable)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%v: %w", err, sentinel.ErrUnavailable)
	}
	return err
}
