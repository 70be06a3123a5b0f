package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campus/internal/leave/models"
	"campus/internal/platform/pg"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// PostgresLeaveStore persists leave requests in PostgreSQL. The transition
// is a single conditional UPDATE: concurrent deciders race on the
// status='pending' predicate and exactly one wins.
type PostgresLeaveStore struct {
	db *sql.DB
}

// NewPostgresLeaveStore constructs a PostgreSQL-backed leave store.
func NewPostgresLeaveStore(db *sql.DB) *PostgresLeaveStore {
	return &PostgresLeaveStore{db: db}
}

func (s *PostgresLeaveStore) Create(ctx context.Context, request *models.LeaveRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, school_id, owner_user_id, reason, from_date, to_date, status, remarks, decided_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(request.ID), uuid.UUID(request.SchoolID), uuid.UUID(request.OwnerUserID),
		request.Reason, request.FromDate, request.ToDate, string(request.Status),
		request.Remarks, pg.NullUUID(uuid.UUID(request.DecidedBy)),
		request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create leave request: %w", pg.TranslateError(err))
	}
	return nil
}

func (s *PostgresLeaveStore) FindByID(ctx context.Context, schoolID id.SchoolID, leaveID id.LeaveID) (*models.LeaveRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, school_id, owner_user_id, reason, from_date, to_date, status, remarks, decided_by, created_at, updated_at
		FROM leave_requests WHERE id = $1 AND school_id = $2`,
		uuid.UUID(leaveID), uuid.UUID(schoolID),
	)
	request, err := scanLeave(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("leave request %s: %w", leaveID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find leave request: %w", pg.TranslateError(err))
	}
	return request, nil
}

func (s *PostgresLeaveStore) List(ctx context.Context, schoolID id.SchoolID, status workflow.Status) ([]*models.LeaveRequest, error) {
	query := `
		SELECT id, school_id, owner_user_id, reason, from_date, to_date, status, remarks, decided_by, created_at, updated_at
		FROM leave_requests WHERE school_id = $1`
	args := []any{uuid.UUID(schoolID)}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", pg.TranslateError(err))
	}
	defer rows.Close()

	out := make([]*models.LeaveRequest, 0)
	for rows.Next() {
		request, err := scanLeave(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		out = append(out, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leave requests: %w", pg.TranslateError(err))
	}
	return out, nil
}

// Transition moves a PENDING request to a terminal status via a conditional
// UPDATE. Zero rows affected means either the request does not exist in this
// school, or it is no longer PENDING; a follow-up read disambiguates so the
// caller can report Conflict versus NotFound.
func (s *PostgresLeaveStore) Transition(ctx context.Context, schoolID id.SchoolID, leaveID id.LeaveID, target workflow.Status, remarks string, decidedBy id.UserID) (*models.LeaveRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE leave_requests
		SET status = $3, remarks = $4, decided_by = $5, updated_at = $6
		WHERE id = $1 AND school_id = $2 AND status = 'pending'
		RETURNING id, school_id, owner_user_id, reason, from_date, to_date, status, remarks, decided_by, created_at, updated_at`,
		uuid.UUID(leaveID), uuid.UUID(schoolID), string(target), remarks,
		pg.NullUUID(uuid.UUID(decidedBy)), requestcontext.Now(ctx),
	)
	request, err := scanLeave(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := s.FindByID(ctx, schoolID, leaveID); findErr != nil {
			return nil, findErr
		}
		return nil, fmt.Errorf("leave request %s already decided: %w", leaveID, sentinel.ErrInvalidState)
	}
	if err != nil {
		return nil, fmt.Errorf("transition leave request: %w", pg.TranslateError(err))
	}
	return request, nil
}

func scanLeave(scan func(dest ...any) error) (*models.LeaveRequest, error) {
	var (
		request   models.LeaveRequest
		rawID     uuid.UUID
		schoolID  uuid.UUID
		ownerID   uuid.UUID
		status    string
		decidedBy sql.Null[uuid.UUID]
	)
	err := scan(&rawID, &schoolID, &ownerID, &request.Reason, &request.FromDate, &request.ToDate,
		&status, &request.Remarks, &decidedBy, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, err
	}
	request.ID = id.LeaveID(rawID)
	request.SchoolID = id.SchoolID(schoolID)
	request.OwnerUserID = id.UserID(ownerID)
	request.Status = workflow.Status(status)
	if decidedBy.Valid {
		request.DecidedBy = id.UserID(decidedBy.V)
	}
	return &request, nil
}
