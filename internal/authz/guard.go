// Package authz makes role and feature authorization decisions.
//
// The guard is deliberately pure: it never fetches data. Tenant isolation is
// enforced by construction (every store query takes the resolved school id)
// and per-resource ownership predicates are evaluated by the calling service,
// which must pass in addition to the guard's decision.
package authz

import (
	"log/slog"

	"campus/internal/identity"
	dErrors "campus/pkg/domain-errors"
)

// RoleSet is the set of roles an operation admits.
type RoleSet []identity.Role

// Contains reports membership of role in the set.
func (rs RoleSet) Contains(role identity.Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// Metrics receives denial outcomes. Satisfied by platform/metrics.
type Metrics interface {
	ObserveDenial(reason string)
}

// Guard evaluates role and feature checks for operations.
type Guard struct {
	logger  *slog.Logger
	metrics Metrics
}

// Option configures the Guard.
type Option func(*Guard)

// WithLogger sets the logger used for denial records.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

// WithMetrics sets the denial outcome collector.
func WithMetrics(m Metrics) Option {
	return func(g *Guard) { g.metrics = m }
}

// New constructs a Guard.
func New(opts ...Option) *Guard {
	g := &Guard{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize decides whether the principal may perform an operation that
// admits the given roles, optionally scoped to a feature. Pass the zero
// Feature for operations with no feature scoping.
//
// Denials:
//   - role outside the required set: CodeRoleNotPermitted, regardless of
//     feature grants
//   - feature-scoped operation, non-blanket role, explicit grant list that
//     lacks the feature: CodeFeatureNotGranted
//
// Superadmin and schooladmin bypass feature checks entirely. A nil grant
// list allows every feature the role admits; only an explicit list narrows.
func (g *Guard) Authorize(principal *identity.Principal, required RoleSet, feature identity.Feature) error {
	if principal == nil {
		return dErrors.New(dErrors.CodeUnauthenticated, "no authenticated principal")
	}

	if !required.Contains(principal.Role) {
		g.deny(principal, "role_not_permitted")
		return dErrors.Newf(dErrors.CodeRoleNotPermitted, "role %s may not perform this operation", principal.Role)
	}

	if feature == "" {
		return nil
	}

	if !principal.HasFeature(feature) {
		g.deny(principal, "feature_not_granted")
		return dErrors.Newf(dErrors.CodeFeatureNotGranted, "feature %s is not granted to this account", feature)
	}
	return nil
}

func (g *Guard) deny(principal *identity.Principal, reason string) {
	if g.metrics != nil {
		g.metrics.ObserveDenial(reason)
	}
	g.logger.Debug("authorization denied",
		"user_id", principal.UserID.String(),
		"role", string(principal.Role),
		"reason", reason,
	)
}
