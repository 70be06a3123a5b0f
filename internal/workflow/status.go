// Package workflow defines the approval state machine shared by leave and
// certificate requests.
//
// A request starts PENDING and moves to exactly one of three terminal states.
// Terminal states are final: the store-level conditional update is the only
// transition mechanism, and it requires the current state to still be PENDING,
// so concurrent approvers race to a single winner.
package workflow

import (
	dErrors "campus/pkg/domain-errors"
)

// Status is a request's position in the approval workflow.
type Status string

const (
	StatusPending               Status = "pending"
	StatusApproved              Status = "approved"
	StatusConditionallyApproved Status = "conditionally_approved"
	StatusRejected              Status = "rejected"
)

// Statuses lists every workflow status. Cache key enumeration depends on
// this staying in sync with the constants.
var Statuses = []Status{
	StatusPending,
	StatusApproved,
	StatusConditionallyApproved,
	StatusRejected,
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses {
		if Status(raw) == s {
			return s, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown status %q", raw)
}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool { return s != StatusPending }

// ValidateDecision checks a requested transition out of PENDING.
//
// It validates the decision's shape only; whether the request is actually
// still PENDING is checked atomically by the store at transition time.
// Conditional approval carries conditions, so it requires remarks; rejection
// may carry remarks; plain approval leaves them empty.
func ValidateDecision(target Status, remarks string) error {
	switch target {
	case StatusApproved, StatusRejected:
		return nil
	case StatusConditionallyApproved:
		if remarks == "" {
			return dErrors.New(dErrors.CodeValidation, "conditional approval requires remarks")
		}
		return nil
	case StatusPending:
		return dErrors.New(dErrors.CodeValidation, "cannot transition back to pending")
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown status %q", target)
	}
}
