package models

import (
	"time"

	"campus/internal/identity"
	id "campus/pkg/domain"
)

// Account is the durable record behind a login. The session token is minted
// from it at login time; the tenant resolver writes a discovered school id
// back onto it so later sessions carry the claim directly.
type Account struct {
	ID        id.UserID
	Role      identity.Role
	SchoolID  id.SchoolID  // zero until resolved or assigned
	StudentID id.StudentID // zero unless the account belongs to a student
	// Features mirrors identity.Principal.Features: nil means legacy
	// allow-all, empty means allow-none.
	Features  []identity.Feature
	CreatedAt time.Time
	UpdatedAt time.Time
}
