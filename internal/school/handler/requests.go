package handler

import (
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

// CreateSchoolRequest is the POST /schools body.
type CreateSchoolRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Validate checks required fields; slug shape is a domain rule.
func (r CreateSchoolRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Slug == "" {
		return dErrors.New(dErrors.CodeValidation, "slug is required")
	}
	return nil
}

// AssignRequest is the body for admin and staff assignment.
type AssignRequest struct {
	UserID string `json:"user_id"`
}

// Validate checks required fields.
func (r AssignRequest) Validate() error {
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	return nil
}

// ParsedUserID returns the user id.
func (r AssignRequest) ParsedUserID() (id.UserID, error) {
	return id.ParseUserID(r.UserID)
}
