// Package tenancy resolves the school tenant a request belongs to.
//
// Every handler used to re-derive "which school is this?" from whatever
// relation happened to be at hand. The resolver centralizes that fallback
// chain so it is written once, observed once, and tested once.
package tenancy

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campus/internal/identity"
	"campus/internal/school/models"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Strategy names the resolution step that produced a school id. Exposed for
// metrics labels and tests.
type Strategy string

const (
	StrategyClaim   Strategy = "claim"
	StrategySlug    Strategy = "slug"
	StrategyStudent Strategy = "student"
	StrategyAdmin   Strategy = "admin"
	StrategyTeacher Strategy = "teacher"
	StrategyClass   Strategy = "class"
)

// SchoolStore looks up school records for the slug hint path.
type SchoolStore interface {
	FindBySlug(ctx context.Context, slug string) (*models.School, error)
}

// AccountWriter persists a discovered school id back onto the account so the
// next session carries the claim directly.
type AccountWriter interface {
	SetSchoolID(ctx context.Context, userID id.UserID, schoolID id.SchoolID) error
}

// StudentLookup maps a student record to its school.
type StudentLookup interface {
	SchoolOfStudent(ctx context.Context, studentID id.StudentID) (id.SchoolID, error)
}

// StaffLookup covers the relation fallbacks: the admin-of relation and the
// direct teacher-of-school relation.
type StaffLookup interface {
	SchoolAdministeredBy(ctx context.Context, userID id.UserID) (id.SchoolID, error)
	SchoolStaffedBy(ctx context.Context, userID id.UserID) (id.SchoolID, error)
}

// ClassLookup resolves a teacher to a school through a class they teach, for
// teachers with no direct staff relation.
type ClassLookup interface {
	SchoolOfClassTeacher(ctx context.Context, userID id.UserID) (id.SchoolID, error)
}

// Metrics receives resolver outcomes. Satisfied by platform/metrics.
type Metrics interface {
	ObserveResolution(strategy string)
	ObserveResolutionFailure()
}

// Resolver determines the definitive school id for a principal via a
// fallback chain: declared claim, slug hint, student record, admin-of
// relation, teacher-of relation (direct or via a taught class). The first
// match wins; later steps are never attempted.
type Resolver struct {
	schools  SchoolStore
	accounts AccountWriter
	students StudentLookup
	staff    StaffLookup
	classes  ClassLookup
	logger   *slog.Logger
	metrics  Metrics
	tracer   trace.Tracer
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for best-effort persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMetrics sets the resolution outcome collector.
func WithMetrics(m Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New constructs a Resolver.
func New(schools SchoolStore, accounts AccountWriter, students StudentLookup, staff StaffLookup, classes ClassLookup, opts ...Option) *Resolver {
	r := &Resolver{
		schools:  schools,
		accounts: accounts,
		students: students,
		staff:    staff,
		classes:  classes,
		logger:   slog.Default(),
		tracer:   otel.Tracer("campus/tenancy"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the school id for the principal.
//
// A declared claim short-circuits without any store access. Resolution via
// any other step persists the discovered id onto the account, best-effort:
// a persistence failure is logged and never surfaced, and repeating the
// write with the same value is a no-op.
//
// Exhausting the chain yields CodeTenantNotFound, which callers treat as a
// terminal precondition failure. Store unavailability mid-chain surfaces as
// CodeUnavailable so callers can back off instead of seeing a spurious
// not-found.
func (r *Resolver) Resolve(ctx context.Context, principal *identity.Principal) (id.SchoolID, error) {
	ctx, span := r.tracer.Start(ctx, "tenancy.Resolve")
	defer span.End()

	schoolID, strategy, err := r.resolve(ctx, principal)
	if err != nil {
		if r.metrics != nil && dErrors.HasCode(err, dErrors.CodeTenantNotFound) {
			r.metrics.ObserveResolutionFailure()
		}
		return id.SchoolID{}, err
	}

	span.SetAttributes(attribute.String("tenancy.strategy", string(strategy)))
	if r.metrics != nil {
		r.metrics.ObserveResolution(string(strategy))
	}

	if strategy != StrategyClaim {
		r.persist(ctx, principal.UserID, schoolID)
	}
	return schoolID, nil
}

func (r *Resolver) resolve(ctx context.Context, principal *identity.Principal) (id.SchoolID, Strategy, error) {
	if principal.HasDeclaredSchool() {
		return principal.SchoolID, StrategyClaim, nil
	}

	if slug := requestcontext.TenantHint(ctx); slug != "" {
		school, err := r.schools.FindBySlug(ctx, slug)
		switch {
		case err == nil && school.IsActive():
			return school.ID, StrategySlug, nil
		case err == nil:
			// Inactive school: the hint yields nothing; fall through.
		case !errors.Is(err, sentinel.ErrNotFound):
			return id.SchoolID{}, "", transient("look up school by slug", err)
		}
	}

	if !principal.StudentID.IsNil() {
		schoolID, err := r.students.SchoolOfStudent(ctx, principal.StudentID)
		if err == nil {
			return schoolID, StrategyStudent, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return id.SchoolID{}, "", transient("look up student school", err)
		}
	}

	schoolID, err := r.staff.SchoolAdministeredBy(ctx, principal.UserID)
	if err == nil {
		return schoolID, StrategyAdmin, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return id.SchoolID{}, "", transient("look up admin relation", err)
	}

	schoolID, err = r.staff.SchoolStaffedBy(ctx, principal.UserID)
	if err == nil {
		return schoolID, StrategyTeacher, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return id.SchoolID{}, "", transient("look up staff relation", err)
	}

	schoolID, err = r.classes.SchoolOfClassTeacher(ctx, principal.UserID)
	if err == nil {
		return schoolID, StrategyClass, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return id.SchoolID{}, "", transient("look up taught classes", err)
	}

	return id.SchoolID{}, "", dErrors.New(dErrors.CodeTenantNotFound, "no school could be resolved for this account")
}

// persist writes the discovered school id onto the account record so the
// next session resolves via the claim alone. Failures are logged, never
// returned: the response must not depend on this side effect.
func (r *Resolver) persist(ctx context.Context, userID id.UserID, schoolID id.SchoolID) {
	if err := r.accounts.SetSchoolID(ctx, userID, schoolID); err != nil {
		r.logger.WarnContext(ctx, "failed to persist resolved school id",
			"user_id", userID.String(),
			"school_id", schoolID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func transient(op string, err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "school resolution temporarily unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
}
