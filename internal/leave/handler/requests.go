package handler

import (
	"time"

	"campus/internal/workflow"
	dErrors "campus/pkg/domain-errors"
)

// SubmitRequest is the POST /leave body.
type SubmitRequest struct {
	Reason   string    `json:"reason"`
	FromDate time.Time `json:"from_date"`
	ToDate   time.Time `json:"to_date"`
}

// Validate checks required fields. Date ordering is a domain rule and is
// enforced by the model.
func (r SubmitRequest) Validate() error {
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if r.FromDate.IsZero() || r.ToDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "from_date and to_date are required")
	}
	return nil
}

// DecisionRequest is the POST /leave/{leaveID}/decision body.
type DecisionRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

// Validate checks the status field is present; the remarks rule for
// conditional approval is enforced by the workflow package.
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
