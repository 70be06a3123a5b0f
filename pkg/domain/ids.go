// Package domain defines the typed identifiers shared across modules.
//
// Every aggregate gets its own UUID-backed type so a student id can never be
// passed where a school id is expected. Parsing happens once at the trust
// boundary (HTTP handlers); services and stores only see typed ids.
package domain

import (
	"github.com/google/uuid"

	dErrors "campus/pkg/domain-errors"
)

type (
	// UserID identifies an account (admin, teacher, student login, staff).
	UserID uuid.UUID
	// SchoolID identifies a school, the tenant boundary for all domain data.
	SchoolID uuid.UUID
	// StudentID identifies a student record within a school.
	StudentID uuid.UUID
	// ClassID identifies a class (section) within a school.
	ClassID uuid.UUID
	// LeaveID identifies a leave request.
	LeaveID uuid.UUID
	// CertificateID identifies a certificate request.
	CertificateID uuid.UUID
)

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id SchoolID) String() string      { return uuid.UUID(id).String() }
func (id StudentID) String() string     { return uuid.UUID(id).String() }
func (id ClassID) String() string       { return uuid.UUID(id).String() }
func (id LeaveID) String() string       { return uuid.UUID(id).String() }
func (id CertificateID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id SchoolID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id StudentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ClassID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id LeaveID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CertificateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant: ids must be valid, non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

func ParseUserID(raw string) (UserID, error) {
	u, err := parseUUID(raw, "user")
	return UserID(u), err
}

func ParseSchoolID(raw string) (SchoolID, error) {
	u, err := parseUUID(raw, "school")
	return SchoolID(u), err
}

func ParseStudentID(raw string) (StudentID, error) {
	u, err := parseUUID(raw, "student")
	return StudentID(u), err
}

func ParseClassID(raw string) (ClassID, error) {
	u, err := parseUUID(raw, "class")
	return ClassID(u), err
}

func ParseLeaveID(raw string) (LeaveID, error) {
	u, err := parseUUID(raw, "leave")
	return LeaveID(u), err
}

func ParseCertificateID(raw string) (CertificateID, error) {
	u, err := parseUUID(raw, "certificate")
	return CertificateID(u), err
}
