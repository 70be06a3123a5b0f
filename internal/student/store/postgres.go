package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campus/internal/platform/pg"
	"campus/internal/student/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
)

// PostgresStudentStore persists students and classes in PostgreSQL. Every
// query on domain rows carries the school id predicate; a row in another
// school scans identically to an absent row.
type PostgresStudentStore struct {
	db *sql.DB
}

// NewPostgresStudentStore constructs a PostgreSQL-backed student store.
func NewPostgresStudentStore(db *sql.DB) *PostgresStudentStore {
	return &PostgresStudentStore{db: db}
}

func (s *PostgresStudentStore) CreateStudent(ctx context.Context, student *models.Student) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (id, school_id, class_id, user_id, first_name, last_name, admission_no, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(student.ID), uuid.UUID(student.SchoolID),
		pg.NullUUID(uuid.UUID(student.ClassID)), pg.NullUUID(uuid.UUID(student.UserID)),
		student.FirstName, student.LastName, student.AdmissionNo, student.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create student: %w", pg.TranslateError(err))
	}
	return nil
}

func (s *PostgresStudentStore) FindStudent(ctx context.Context, schoolID id.SchoolID, studentID id.StudentID) (*models.Student, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, school_id, class_id, user_id, first_name, last_name, admission_no, created_at
		FROM students WHERE id = $1 AND school_id = $2`,
		uuid.UUID(studentID), uuid.UUID(schoolID),
	)
	student, err := scanStudent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %s: %w", studentID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find student: %w", pg.TranslateError(err))
	}
	return student, nil
}

func (s *PostgresStudentStore) ListStudents(ctx context.Context, schoolID id.SchoolID, classID id.ClassID) ([]*models.Student, error) {
	query := `
		SELECT id, school_id, class_id, user_id, first_name, last_name, admission_no, created_at
		FROM students WHERE school_id = $1`
	args := []any{uuid.UUID(schoolID)}
	if !classID.IsNil() {
		query += ` AND class_id = $2`
		args = append(args, uuid.UUID(classID))
	}
	query += ` ORDER BY admission_no`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", pg.TranslateError(err))
	}
	defer rows.Close()

	out := make([]*models.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list students: %w", pg.TranslateError(err))
	}
	return out, nil
}

// SchoolOfStudent supports tenant resolution for student principals.
func (s *PostgresStudentStore) SchoolOfStudent(ctx context.Context, studentID id.StudentID) (id.SchoolID, error) {
	var schoolID uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT school_id FROM students WHERE id = $1`, uuid.UUID(studentID)).Scan(&schoolID)
	if errors.Is(err, sql.ErrNoRows) {
		return id.SchoolID{}, fmt.Errorf("student %s: %w", studentID, sentinel.ErrNotFound)
	}
	if err != nil {
		return id.SchoolID{}, fmt.Errorf("find student school: %w", pg.TranslateError(err))
	}
	return id.SchoolID(schoolID), nil
}

func (s *PostgresStudentStore) CreateClass(ctx context.Context, class *models.Class) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO classes (id, school_id, name, teacher_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(class.ID), uuid.UUID(class.SchoolID), class.Name,
		pg.NullUUID(uuid.UUID(class.TeacherID)), class.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create class: %w", pg.TranslateError(err))
	}
	return nil
}

func (s *PostgresStudentStore) ListClasses(ctx context.Context, schoolID id.SchoolID) ([]*models.Class, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, school_id, name, teacher_id, created_at
		FROM classes WHERE school_id = $1 ORDER BY name`,
		uuid.UUID(schoolID),
	)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", pg.TranslateError(err))
	}
	defer rows.Close()

	out := make([]*models.Class, 0)
	for rows.Next() {
		class, err := scanClass(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		out = append(out, class)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list classes: %w", pg.TranslateError(err))
	}
	return out, nil
}

func (s *PostgresStudentStore) FindClass(ctx context.Context, schoolID id.SchoolID, classID id.ClassID) (*models.Class, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, school_id, name, teacher_id, created_at
		FROM classes WHERE id = $1 AND school_id = $2`,
		uuid.UUID(classID), uuid.UUID(schoolID),
	)
	class, err := scanClass(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("class %s: %w", classID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find class: %w", pg.TranslateError(err))
	}
	return class, nil
}

// SchoolOfClassTeacher supports tenant resolution for teachers reachable
// only through a class they teach.
func (s *PostgresStudentStore) SchoolOfClassTeacher(ctx context.Context, userID id.UserID) (id.SchoolID, error) {
	var schoolID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT school_id FROM classes WHERE teacher_id = $1 LIMIT 1`,
		uuid.UUID(userID),
	).Scan(&schoolID)
	if errors.Is(err, sql.ErrNoRows) {
		return id.SchoolID{}, fmt.Errorf("taught class for %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return id.SchoolID{}, fmt.Errorf("find taught class: %w", pg.TranslateError(err))
	}
	return id.SchoolID(schoolID), nil
}

func scanStudent(scan func(dest ...any) error) (*models.Student, error) {
	var (
		student  models.Student
		rawID    uuid.UUID
		schoolID uuid.UUID
		classID  sql.Null[uuid.UUID]
		userID   sql.Null[uuid.UUID]
	)
	if err := scan(&rawID, &schoolID, &classID, &userID, &student.FirstName, &student.LastName, &student.AdmissionNo, &student.CreatedAt); err != nil {
		return nil, err
	}
	student.ID = id.StudentID(rawID)
	student.SchoolID = id.SchoolID(schoolID)
	if classID.Valid {
		student.ClassID = id.ClassID(classID.V)
	}
	if userID.Valid {
		student.UserID = id.UserID(userID.V)
	}
	return &student, nil
}

func scanClass(scan func(dest ...any) error) (*models.Class, error) {
	var (
		class     models.Class
		rawID     uuid.UUID
		schoolID  uuid.UUID
		teacherID sql.Null[uuid.UUID]
	)
	if err := scan(&rawID, &schoolID, &class.Name, &teacherID, &class.CreatedAt); err != nil {
		return nil, err
	}
	class.ID = id.ClassID(rawID)
	class.SchoolID = id.SchoolID(schoolID)
	if teacherID.Valid {
		class.TeacherID = id.UserID(teacherID.V)
	}
	return &class, nil
}
