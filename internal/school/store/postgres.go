package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"campus/internal/platform/pg"
	"campus/internal/school/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
)

// PostgresSchoolStore persists schools and staff relations in PostgreSQL.
type PostgresSchoolStore struct {
	db *sql.DB
}

// NewPostgresSchoolStore constructs a PostgreSQL-backed school store.
func NewPostgresSchoolStore(db *sql.DB) *PostgresSchoolStore {
	return &PostgresSchoolStore{db: db}
}

func (s *PostgresSchoolStore) Create(ctx context.Context, school *models.School) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schools (id, name, slug, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(school.ID), school.Name, strings.ToLower(school.Slug),
		string(school.Status), school.CreatedAt, school.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create school: %w", pg.TranslateError(err))
	}
	return nil
}

func (s *PostgresSchoolStore) FindByID(ctx context.Context, schoolID id.SchoolID) (*models.School, error) {
	return s.scanSchool(s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, status, created_at, updated_at
		FROM schools WHERE id = $1`,
		uuid.UUID(schoolID),
	))
}

func (s *PostgresSchoolStore) FindBySlug(ctx context.Context, slug string) (*models.School, error) {
	return s.scanSchool(s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, status, created_at, updated_at
		FROM schools WHERE slug = $1`,
		strings.ToLower(slug),
	))
}

func (s *PostgresSchoolStore) Update(ctx context.Context, school *models.School) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE schools SET name = $2, status = $3, updated_at = $4 WHERE id = $1`,
		uuid.UUID(school.ID), school.Name, string(school.Status), school.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update school: %w", pg.TranslateError(err))
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("school %s: %w", school.ID, sentinel.ErrNotFound)
	}
	return nil
}

// SetAdmin records the admin-of relation used by tenant resolution.
func (s *PostgresSchoolStore) SetAdmin(ctx context.Context, userID id.UserID, schoolID id.SchoolID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO school_admins (user_id, school_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET school_id = EXCLUDED.school_id`,
		uuid.UUID(userID), uuid.UUID(schoolID),
	)
	if err != nil {
		return fmt.Errorf("set school admin: %w", pg.TranslateError(err))
	}
	return nil
}

// SetStaff records the direct teacher-of-school relation.
func (s *PostgresSchoolStore) SetStaff(ctx context.Context, userID id.UserID, schoolID id.SchoolID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO school_staff (user_id, school_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET school_id = EXCLUDED.school_id`,
		uuid.UUID(userID), uuid.UUID(schoolID),
	)
	if err != nil {
		return fmt.Errorf("set school staff: %w", pg.TranslateError(err))
	}
	return nil
}

// SchoolAdministeredBy returns the school the user administers.
func (s *PostgresSchoolStore) SchoolAdministeredBy(ctx context.Context, userID id.UserID) (id.SchoolID, error) {
	return s.scanRelation(ctx, `SELECT school_id FROM school_admins WHERE user_id = $1`, userID, "admin")
}

// SchoolStaffedBy returns the school the user is attached to as staff.
func (s *PostgresSchoolStore) SchoolStaffedBy(ctx context.Context, userID id.UserID) (id.SchoolID, error) {
	return s.scanRelation(ctx, `SELECT school_id FROM school_staff WHERE user_id = $1`, userID, "staff")
}

func (s *PostgresSchoolStore) scanRelation(ctx context.Context, query string, userID id.UserID, kind string) (id.SchoolID, error) {
	var schoolID uuid.UUID
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(&schoolID)
	if errors.Is(err, sql.ErrNoRows) {
		return id.SchoolID{}, fmt.Errorf("%s relation for %s: %w", kind, userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return id.SchoolID{}, fmt.Errorf("find %s relation: %w", kind, pg.TranslateError(err))
	}
	return id.SchoolID(schoolID), nil
}

func (s *PostgresSchoolStore) scanSchool(row *sql.Row) (*models.School, error) {
	var (
		school models.School
		rawID  uuid.UUID
		status string
	)
	err := row.Scan(&rawID, &school.Name, &school.Slug, &status, &school.CreatedAt, &school.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("school: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find school: %w", pg.TranslateError(err))
	}
	school.ID = id.SchoolID(rawID)
	school.Status = models.SchoolStatus(status)
	return &school, nil
}
