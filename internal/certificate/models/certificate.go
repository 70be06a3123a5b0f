package models

import (
	"time"

	"campus/internal/workflow"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

// Kind is the certificate being requested.
type Kind string

const (
	KindBonafide  Kind = "bonafide"
	KindTransfer  Kind = "transfer"
	KindCharacter Kind = "character"
)

// Kinds lists every certificate kind.
var Kinds = []Kind{KindBonafide, KindTransfer, KindCharacter}

// ParseKind validates a raw kind string.
func ParseKind(raw string) (Kind, error) {
	for _, k := range Kinds {
		if Kind(raw) == k {
			return k, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown certificate kind %q", raw)
}

// CertificateRequest is a request for a certificate to be issued for a
// student. It follows the same approval workflow as leave requests.
type CertificateRequest struct {
	ID          id.CertificateID `json:"id"`
	SchoolID    id.SchoolID      `json:"school_id"`
	StudentID   id.StudentID     `json:"student_id"`
	OwnerUserID id.UserID        `json:"owner_user_id"`
	Kind        Kind             `json:"kind"`
	Status      workflow.Status  `json:"status"`
	Remarks     string           `json:"remarks,omitempty"`
	DecidedBy   id.UserID        `json:"decided_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewCertificateRequest validates and constructs a pending request.
func NewCertificateRequest(certID id.CertificateID, schoolID id.SchoolID, studentID id.StudentID, owner id.UserID, kind Kind, now time.Time) (*CertificateRequest, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if schoolID.IsNil() || studentID.IsNil() || owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "certificate request requires school, student and owner")
	}
	return &CertificateRequest{
		ID:          certID,
		SchoolID:    schoolID,
		StudentID:   studentID,
		OwnerUserID: owner,
		Kind:        kind,
		Status:      workflow.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
