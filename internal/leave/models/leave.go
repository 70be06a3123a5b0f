package models

import (
	"strings"
	"time"

	"campus/internal/workflow"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

// LeaveRequest is an absence request raised by a student or staff member,
// decided by a school-level approver.
//
// Status follows the shared workflow machine: PENDING until exactly one
// decision lands; the store's conditional update guarantees a concurrent
// second decision observes Conflict rather than overwriting.
type LeaveRequest struct {
	ID          id.LeaveID      `json:"id"`
	SchoolID    id.SchoolID     `json:"school_id"`
	OwnerUserID id.UserID       `json:"owner_user_id"`
	Reason      string          `json:"reason"`
	FromDate    time.Time       `json:"from_date"`
	ToDate      time.Time       `json:"to_date"`
	Status      workflow.Status `json:"status"`
	Remarks     string          `json:"remarks,omitempty"`
	DecidedBy   id.UserID       `json:"decided_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewLeaveRequest validates and constructs a pending leave request.
func NewLeaveRequest(leaveID id.LeaveID, schoolID id.SchoolID, owner id.UserID, reason string, from, to time.Time, now time.Time) (*LeaveRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "leave reason is required")
	}
	if to.Before(from) {
		return nil, dErrors.New(dErrors.CodeValidation, "leave end date precedes start date")
	}
	if schoolID.IsNil() || owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "leave request requires school and owner")
	}
	return &LeaveRequest{
		ID:          leaveID,
		SchoolID:    schoolID,
		OwnerUserID: owner,
		Reason:      reason,
		FromDate:    from,
		ToDate:      to,
		Status:      workflow.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
