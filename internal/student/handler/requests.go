package handler

import (
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

// CreateStudentRequest is the POST /students body.
type CreateStudentRequest struct {
	ClassID     string `json:"class_id,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	AdmissionNo string `json:"admission_no"`
}

// Validate checks required fields. Deeper rules live in the domain model.
func (r CreateStudentRequest) Validate() error {
	if r.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name is required")
	}
	if r.AdmissionNo == "" {
		return dErrors.New(dErrors.CodeValidation, "admission_no is required")
	}
	return nil
}

// ParsedClassID returns the optional class id, zero when absent.
func (r CreateStudentRequest) ParsedClassID() (id.ClassID, error) {
	if r.ClassID == "" {
		return id.ClassID{}, nil
	}
	return id.ParseClassID(r.ClassID)
}

// CreateClassRequest is the POST /classes body.
type CreateClassRequest struct {
	Name      string `json:"name"`
	TeacherID string `json:"teacher_id,omitempty"`
}

// Validate checks required fields.
func (r CreateClassRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// ParsedTeacherID returns the optional teacher id, zero when absent.
func (r CreateClassRequest) ParsedTeacherID() (id.UserID, error) {
	if r.TeacherID == "" {
		return id.UserID{}, nil
	}
	return id.ParseUserID(r.TeacherID)
}
