package handler

import (
	"campus/internal/certificate/models"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

// SubmitRequest is the POST /certificates body.
type SubmitRequest struct {
	StudentID string `json:"student_id"`
	Kind      string `json:"kind"`
}

// Validate checks required fields.
func (r SubmitRequest) Validate() error {
	if r.StudentID == "" {
		return dErrors.New(dErrors.CodeValidation, "student_id is required")
	}
	if r.Kind == "" {
		return dErrors.New(dErrors.CodeValidation, "kind is required")
	}
	return nil
}

// ParsedStudentID returns the student id.
func (r SubmitRequest) ParsedStudentID() (id.StudentID, error) {
	return id.ParseStudentID(r.StudentID)
}

// ParsedKind returns the certificate kind.
func (r SubmitRequest) ParsedKind() (models.Kind, error) {
	return models.ParseKind(r.Kind)
}

// DecisionRequest is the POST /certificates/{certificateID}/decision body.
type DecisionRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

// Validate checks the status field is present.
func (r DecisionRequest) Validate() error {
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	return nil
}

// ParsedStatus returns the target status.
func (r DecisionRequest) ParsedStatus() (workflow.Status, error) {
	return workflow.ParseStatus(r.Status)
}
