// Package identity defines the authenticated principal and the closed role and
// feature catalogs used for authorization decisions.
package identity

import (
	"context"

	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

// Role is the coarse authorization class of an account. The set is closed;
// role membership is assigned at account creation and never changes.
type Role string

const (
	RoleSuperAdmin  Role = "superadmin"
	RoleSchoolAdmin Role = "schooladmin"
	RoleTeacher     Role = "teacher"
	RoleStudent     Role = "student"
	RolePrincipal   Role = "principal"
	RoleHOD         Role = "hod"
)

// Roles lists every valid role. Kept in sync with the constants above.
var Roles = []Role{
	RoleSuperAdmin,
	RoleSchoolAdmin,
	RoleTeacher,
	RoleStudent,
	RolePrincipal,
	RoleHOD,
}

// ParseRole validates a raw role string against the closed set.
func ParseRole(raw string) (Role, error) {
	for _, r := range Roles {
		if Role(raw) == r {
			return r, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", raw)
}

// HasBlanketFeatureAccess reports whether the role bypasses feature grant
// checks entirely. Platform superadmins and school admins always see every
// feature; narrowing only applies to the remaining roles.
func (r Role) HasBlanketFeatureAccess() bool {
	return r == RoleSuperAdmin || r == RoleSchoolAdmin
}

// Feature identifies an application area that can be granted or withheld
// per account. The catalog is closed.
type Feature string

const (
	FeatureDashboard    Feature = "dashboard"
	FeatureAttendance   Feature = "attendance"
	FeatureHomework     Feature = "homework"
	FeatureExams        Feature = "exams"
	FeatureFees         Feature = "fees"
	FeatureCertificates Feature = "certificates"
	FeatureLeave        Feature = "leave"
	FeatureEvents       Feature = "events"
	FeatureCirculars    Feature = "circulars"
	FeatureNews         Feature = "news"
)

// FeatureCatalog lists every feature id in the closed catalog.
var FeatureCatalog = []Feature{
	FeatureDashboard,
	FeatureAttendance,
	FeatureHomework,
	FeatureExams,
	FeatureFees,
	FeatureCertificates,
	FeatureLeave,
	FeatureEvents,
	FeatureCirculars,
	FeatureNews,
}

// ParseFeature validates a raw feature id against the catalog.
func ParseFeature(raw string) (Feature, error) {
	for _, f := range FeatureCatalog {
		if Feature(raw) == f {
			return f, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown feature %q", raw)
}

// Principal is the authenticated caller. It is built once at session
// validation and is immutable for the lifetime of the request.
//
// SchoolID is the declared tenant claim from the session token; the zero
// value means the account predates tenant claims and the resolver must fall
// back to relation lookups. StudentID links student logins to their student
// record.
//
// Features is the per-account allow-list narrowing the role's access:
//   - nil means the account predates feature grants; every feature the role
//     covers is allowed (legacy contract, preserved deliberately)
//   - an explicit empty slice means no feature-scoped operation is allowed
//
// The nil/empty distinction is load-bearing; code must never normalize one
// into the other.
type Principal struct {
	UserID    id.UserID
	Role      Role
	SchoolID  id.SchoolID
	StudentID id.StudentID
	Features  []Feature
}

// HasDeclaredSchool reports whether the session carried a tenant claim.
func (p *Principal) HasDeclaredSchool() bool { return !p.SchoolID.IsNil() }

// HasFeature evaluates the grant list against the legacy contract described
// on Features. Blanket-access roles short-circuit to true.
func (p *Principal) HasFeature(f Feature) bool {
	if p.Role.HasBlanketFeatureAccess() {
		return true
	}
	if p.Features == nil {
		return true
	}
	for _, granted := range p.Features {
		if granted == f {
			return true
		}
	}
	return false
}

type principalKey struct{}

// ContextKeyPrincipal is exported for tests that build contexts directly.
var ContextKeyPrincipal = principalKey{}

// WithPrincipal injects the authenticated principal into the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// FromContext retrieves the authenticated principal, if any.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(*Principal)
	return p, ok && p != nil
}
