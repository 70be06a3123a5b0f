package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"campus/internal/authz"
	"campus/internal/cache"
	"campus/internal/certificate/models"
	"campus/internal/identity"
	"campus/internal/notify"
	"campus/internal/tenancy"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Store is the persistence port for certificate requests.
type Store interface {
	Create(ctx context.Context, request *models.CertificateRequest) error
	FindByID(ctx context.Context, schoolID id.SchoolID, certID id.CertificateID) (*models.CertificateRequest, error)
	List(ctx context.Context, schoolID id.SchoolID, status workflow.Status) ([]*models.CertificateRequest, error)
	Transition(ctx context.Context, schoolID id.SchoolID, certID id.CertificateID, target workflow.Status, remarks string, decidedBy id.UserID) (*models.CertificateRequest, error)
}

// StudentLookup verifies the student exists inside the resolved school
// before a request is raised for them.
type StudentLookup interface {
	SchoolOfStudent(ctx context.Context, studentID id.StudentID) (id.SchoolID, error)
}

var submitRoles = authz.RoleSet{
	identity.RoleStudent,
	identity.RoleTeacher,
	identity.RoleSchoolAdmin,
	identity.RoleSuperAdmin,
}

var decideRoles = authz.RoleSet{
	identity.RolePrincipal,
	identity.RoleSchoolAdmin,
	identity.RoleSuperAdmin,
}

// Service orchestrates the certificate request workflow. The list read is
// cache-aside; every write invalidates the full enumerated key set since the
// status filter is a closed set.
type Service struct {
	store    Store
	students StudentLookup
	resolver *tenancy.Resolver
	guard    *authz.Guard
	cache    *cache.Cache
	notifier *notify.BestEffort
	logger   *slog.Logger
	ttl      time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCacheTTL overrides the default list cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// New constructs a Service.
func New(store Store, students StudentLookup, resolver *tenancy.Resolver, guard *authz.Guard, c *cache.Cache, notifier *notify.BestEffort, opts ...Option) *Service {
	s := &Service{
		store:    store,
		students: students,
		resolver: resolver,
		guard:    guard,
		cache:    c,
		notifier: notifier,
		logger:   slog.Default(),
		ttl:      cache.DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit raises a pending certificate request for a student in the resolved
// school. A student id from another school is indistinguishable from an
// unknown one.
func (s *Service) Submit(ctx context.Context, principal *identity.Principal, studentID id.StudentID, kind models.Kind) (*models.CertificateRequest, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, submitRoles, identity.FeatureCertificates); err != nil {
		return nil, err
	}

	studentSchool, err := s.students.SchoolOfStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "not found")
		}
		return nil, translate(err)
	}
	if studentSchool != schoolID {
		return nil, dErrors.New(dErrors.CodeNotFound, "not found")
	}

	request, err := models.NewCertificateRequest(
		id.CertificateID(uuid.New()), schoolID, studentID, principal.UserID,
		kind, requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, request); err != nil {
		return nil, translate(err)
	}

	s.cache.Invalidate(ctx, cache.CertificateWriteSet(schoolID)...)
	return request, nil
}

// List returns the school's certificate requests, optionally filtered by
// status, served cache-aside.
func (s *Service) List(ctx context.Context, principal *identity.Principal, status workflow.Status) ([]*models.CertificateRequest, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, decideRoles, identity.FeatureCertificates); err != nil {
		return nil, err
	}

	key := cache.CertificatesKey(schoolID)
	if status != "" {
		key = cache.CertificatesByStatusKey(schoolID, status)
	}
	return cache.GetOrLoad(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]*models.CertificateRequest, error) {
		requests, err := s.store.List(ctx, schoolID, status)
		if err != nil {
			return nil, translate(err)
		}
		return requests, nil
	})
}

// Decide moves a pending request to the target terminal status, invalidates
// the cached lists and notifies the requester.
func (s *Service) Decide(ctx context.Context, principal *identity.Principal, certID id.CertificateID, target workflow.Status, remarks string) (*models.CertificateRequest, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, decideRoles, identity.FeatureCertificates); err != nil {
		return nil, err
	}
	if err := workflow.ValidateDecision(target, remarks); err != nil {
		return nil, err
	}

	request, err := s.store.Transition(ctx, schoolID, certID, target, remarks, principal.UserID)
	if err != nil {
		return nil, translate(err)
	}

	s.cache.Invalidate(ctx, cache.CertificateWriteSet(schoolID)...)

	s.notifier.Send(ctx, notify.Message{
		UserID:   request.OwnerUserID,
		Category: "certificates",
		Title:    "Certificate request " + string(target),
		Body:     "Your " + string(request.Kind) + " certificate request has been decided.",
	})
	return request, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeConflict, "request already decided")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "already exists")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "certificate store failure")
	}
}
