package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"campus/internal/identity"
	"campus/internal/identity/models"
	"campus/internal/platform/pg"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// PostgresAccountStore persists accounts in PostgreSQL.
//
// The features column is a nullable text array: NULL keeps the legacy
// allow-all semantics, an empty array means allow-none. Scanning must not
// collapse the two.
type PostgresAccountStore struct {
	db *sql.DB
}

// NewPostgresAccountStore constructs a PostgreSQL-backed account store.
func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

func (s *PostgresAccountStore) Create(ctx context.Context, account *models.Account) error {
	var features any
	if account.Features != nil {
		features = pq.Array(featureStrings(account.Features))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, role, school_id, student_id, features, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(account.ID), string(account.Role),
		pg.NullUUID(uuid.UUID(account.SchoolID)), pg.NullUUID(uuid.UUID(account.StudentID)),
		features, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create account: %w", pg.TranslateError(err))
	}
	return nil
}

func (s *PostgresAccountStore) FindByID(ctx context.Context, userID id.UserID) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, role, school_id, student_id, features, created_at, updated_at
		FROM accounts WHERE id = $1`,
		uuid.UUID(userID),
	)

	var (
		account   models.Account
		rawID     uuid.UUID
		role      string
		schoolID  sql.Null[uuid.UUID]
		studentID sql.Null[uuid.UUID]
		features  nullableTextArray
	)
	err := row.Scan(&rawID, &role, &schoolID, &studentID, &features, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", pg.TranslateError(err))
	}

	account.ID = id.UserID(rawID)
	account.Role = identity.Role(role)
	if schoolID.Valid {
		account.SchoolID = id.SchoolID(schoolID.V)
	}
	if studentID.Valid {
		account.StudentID = id.StudentID(studentID.V)
	}
	if features.Valid {
		account.Features = parseFeatures(features.Values)
	}
	return &account, nil
}

// nullableTextArray scans a nullable text[] column while preserving the
// NULL-vs-empty distinction that the feature grant contract depends on.
type nullableTextArray struct {
	Values []string
	Valid  bool
}

func (n *nullableTextArray) Scan(src any) error {
	if src == nil {
		n.Valid = false
		n.Values = nil
		return nil
	}
	n.Valid = true
	arr := pq.StringArray{}
	if err := arr.Scan(src); err != nil {
		return err
	}
	n.Values = []string(arr)
	return nil
}

// SetSchoolID persists a resolved school id onto the account. The UPDATE is
// idempotent; repeating it with the same value changes nothing.
func (s *PostgresAccountStore) SetSchoolID(ctx context.Context, userID id.UserID, schoolID id.SchoolID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET school_id = $2, updated_at = $3
		WHERE id = $1 AND (school_id IS DISTINCT FROM $2)`,
		uuid.UUID(userID), uuid.UUID(schoolID), requestcontext.Now(ctx),
	)
	if err != nil {
		return fmt.Errorf("set account school: %w", pg.TranslateError(err))
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		// Either the value already matched or the account is gone; check which.
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, uuid.UUID(userID)).Scan(&exists); err != nil {
			return fmt.Errorf("set account school: %w", pg.TranslateError(err))
		}
		if !exists {
			return fmt.Errorf("account %s: %w", userID, sentinel.ErrNotFound)
		}
	}
	return nil
}

func featureStrings(features []identity.Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = string(f)
	}
	return out
}

func parseFeatures(raw []string) []identity.Feature {
	out := make([]identity.Feature, 0, len(raw))
	for _, f := range raw {
		out = append(out, identity.Feature(f))
	}
	return out
}
