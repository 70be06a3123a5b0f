package models

import (
	"regexp"
	"time"

	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

// SchoolStatus is the lifecycle state of a school tenant.
type SchoolStatus string

const (
	SchoolStatusActive   SchoolStatus = "active"
	SchoolStatusInactive SchoolStatus = "inactive"
)

// CanTransitionTo allows only active ↔ inactive; there are no other states.
func (s SchoolStatus) CanTransitionTo(target SchoolStatus) bool {
	return s != target &&
		(target == SchoolStatusActive || target == SchoolStatusInactive)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// School is the tenant aggregate. Every domain entity belongs to exactly one
// school, and every query below the authorization layer is scoped by its id.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Slug is a DNS-label style identifier used as the subdomain hint
//   - Status is either active or inactive
//
// An inactive school is an immediate access boundary: tenant resolution via
// the slug hint treats it as not found, so suspended schools drop off the
// request path without touching their domain data.
type School struct {
	ID        id.SchoolID  `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Status    SchoolStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (s *School) IsActive() bool { return s.Status == SchoolStatusActive }

// Deactivate transitions the school to inactive status.
func (s *School) Deactivate(now time.Time) error {
	if !s.Status.CanTransitionTo(SchoolStatusInactive) {
		return dErrors.New(dErrors.CodeConflict, "school is already inactive")
	}
	s.Status = SchoolStatusInactive
	s.UpdatedAt = now
	return nil
}

// Reactivate transitions the school back to active status.
func (s *School) Reactivate(now time.Time) error {
	if !s.Status.CanTransitionTo(SchoolStatusActive) {
		return dErrors.New(dErrors.CodeConflict, "school is already active")
	}
	s.Status = SchoolStatusActive
	s.UpdatedAt = now
	return nil
}

// NewSchool validates and constructs a school.
func NewSchool(schoolID id.SchoolID, name, slug string, now time.Time) (*School, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "school name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeValidation, "school name must be 128 characters or less")
	}
	if !slugPattern.MatchString(slug) {
		return nil, dErrors.New(dErrors.CodeValidation, "school slug must be a lowercase DNS label")
	}
	return &School{
		ID:        schoolID,
		Name:      name,
		Slug:      slug,
		Status:    SchoolStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
