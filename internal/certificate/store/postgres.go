package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campus/internal/certificate/models"
	"campus/internal/platform/pg"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// PostgresCertificateStore persists certificate requests in PostgreSQL,
// using the same conditional-UPDATE transition as the leave store.
type PostgresCertificateStore struct {
	db *sql.DB
}

// NewPostgresCertificateStore constructs a PostgreSQL-backed store.
func NewPostgresCertificateStore(db *sql.DB) *PostgresCertificateStore {
	return &PostgresCertificateStore{db: db}
}

func (s *PostgresCertificateStore) Create(ctx context.Context, request *models.CertificateRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificate_requests (id, school_id, student_id, owner_user_id, kind, status, remarks, decided_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(request.ID), uuid.UUID(request.SchoolID), uuid.UUID(request.StudentID),
		uuid.UUID(request.OwnerUserID), string(request.Kind), string(request.Status),
		request.Remarks, pg.NullUUID(uuid.UUID(request.DecidedBy)),
		request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create certificate request: %w", pg.TranslateError(err))
	}
	return nil
}

func (s *PostgresCertificateStore) FindByID(ctx context.Context, schoolID id.SchoolID, certID id.CertificateID) (*models.CertificateRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, school_id, student_id, owner_user_id, kind, status, remarks, decided_by, created_at, updated_at
		FROM certificate_requests WHERE id = $1 AND school_id = $2`,
		uuid.UUID(certID), uuid.UUID(schoolID),
	)
	request, err := scanCertificate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("certificate request %s: %w", certID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find certificate request: %w", pg.TranslateError(err))
	}
	return request, nil
}

func (s *PostgresCertificateStore) List(ctx context.Context, schoolID id.SchoolID, status workflow.Status) ([]*models.CertificateRequest, error) {
	query := `
		SELECT id, school_id, student_id, owner_user_id, kind, status, remarks, decided_by, created_at, updated_at
		FROM certificate_requests WHERE school_id = $1`
	args := []any{uuid.UUID(schoolID)}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list certificate requests: %w", pg.TranslateError(err))
	}
	defer rows.Close()

	out := make([]*models.CertificateRequest, 0)
	for rows.Next() {
		request, err := scanCertificate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan certificate request: %w", err)
		}
		out = append(out, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list certificate requests: %w", pg.TranslateError(err))
	}
	return out, nil
}

// Transition moves a PENDING request to a terminal status; see the leave
// store for the zero-rows disambiguation.
func (s *PostgresCertificateStore) Transition(ctx context.Context, schoolID id.SchoolID, certID id.CertificateID, target workflow.Status, remarks string, decidedBy id.UserID) (*models.CertificateRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE certificate_requests
		SET status = $3, remarks = $4, decided_by = $5, updated_at = $6
		WHERE id = $1 AND school_id = $2 AND status = 'pending'
		RETURNING id, school_id, student_id, owner_user_id, kind, status, remarks, decided_by, created_at, updated_at`,
		uuid.UUID(certID), uuid.UUID(schoolID), string(target), remarks,
		pg.NullUUID(uuid.UUID(decidedBy)), requestcontext.Now(ctx),
	)
	request, err := scanCertificate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := s.FindByID(ctx, schoolID, certID); findErr != nil {
			return nil, findErr
		}
		return nil, fmt.Errorf("certificate request %s already decided: %w", certID, sentinel.ErrInvalidState)
	}
	if err != nil {
		return nil, fmt.Errorf("transition certificate request: %w", pg.TranslateError(err))
	}
	return request, nil
}

func scanCertificate(scan func(dest ...any) error) (*models.CertificateRequest, error) {
	var (
		request   models.CertificateRequest
		rawID     uuid.UUID
		schoolID  uuid.UUID
		studentID uuid.UUID
		ownerID   uuid.UUID
		kind      string
		status    string
		decidedBy sql.Null[uuid.UUID]
	)
	err := scan(&rawID, &schoolID, &studentID, &ownerID, &kind, &status,
		&request.Remarks, &decidedBy, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, err
	}
	request.ID = id.CertificateID(rawID)
	request.SchoolID = id.SchoolID(schoolID)
	request.StudentID = id.StudentID(studentID)
	request.OwnerUserID = id.UserID(ownerID)
	request.Kind = models.Kind(kind)
	request.Status = workflow.Status(status)
	if decidedBy.Valid {
		request.DecidedBy = id.UserID(decidedBy.V)
	}
	return &request, nil
}
