package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"campus/internal/authz"
	"campus/internal/cache"
	"campus/internal/identity"
	"campus/internal/student/models"
	"campus/internal/tenancy"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Store is the persistence port for students and classes.
type Store interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	FindStudent(ctx context.Context, schoolID id.SchoolID, studentID id.StudentID) (*models.Student, error)
	ListStudents(ctx context.Context, schoolID id.SchoolID, classID id.ClassID) ([]*models.Student, error)
	CreateClass(ctx context.Context, class *models.Class) error
	ListClasses(ctx context.Context, schoolID id.SchoolID) ([]*models.Class, error)
	FindClass(ctx context.Context, schoolID id.SchoolID, classID id.ClassID) (*models.Class, error)
}

// Staff roles that may read the student directory.
var readRoles = authz.RoleSet{
	identity.RoleSuperAdmin,
	identity.RoleSchoolAdmin,
	identity.RolePrincipal,
	identity.RoleHOD,
	identity.RoleTeacher,
}

// Admin roles that may create students and classes.
var writeRoles = authz.RoleSet{
	identity.RoleSuperAdmin,
	identity.RoleSchoolAdmin,
	identity.RolePrincipal,
}

// Service orchestrates student and class operations. List reads go through
// the cache-aside wrapper; writes invalidate the enumerated key sets.
type Service struct {
	store    Store
	resolver *tenancy.Resolver
	guard    *authz.Guard
	cache    *cache.Cache
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
func New(store Store, resolver *tenancy.Resolver, guard *authz.Guard, c *cache.Cache, opts ...Option) *Service {
	s := &Service{
		store:    store,
		resolver: resolver,
		guard:    guard,
		cache:    c,
		logger:   slog.Default(),
		ttl:      cache.DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListStudents returns the school's students, optionally filtered by class.
// Pass the zero ClassID for the whole school.
func (s *Service) ListStudents(ctx context.Context, principal *identity.Principal, classID id.ClassID) ([]*models.Student, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, readRoles, ""); err != nil {
		return nil, err
	}

	key := cache.StudentsKey(schoolID)
	if !classID.IsNil() {
		key = cache.StudentsByClassKey(schoolID, classID)
	}
	return cache.GetOrLoad(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]*models.Student, error) {
		students, err := s.store.ListStudents(ctx, schoolID, classID)
		if err != nil {
			return nil, translate(err, "list students")
		}
		return students, nil
	})
}

// GetStudent returns a single student within the resolved school. Absent and
// cross-school ids produce the identical not-found outcome.
func (s *Service) GetStudent(ctx context.Context, principal *identity.Principal, studentID id.StudentID) (*models.Student, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, readRoles, ""); err != nil {
		return nil, err
	}
	student, err := s.store.FindStudent(ctx, schoolID, studentID)
	if err != nil {
		return nil, translate(err, "find student")
	}
	return student, nil
}

// CreateStudentInput carries the fields a caller may set.
type CreateStudentInput struct {
	ClassID     id.ClassID
	FirstName   string
	LastName    string
	AdmissionNo string
}

// CreateStudent adds a student to the resolved school and invalidates every
// student-list key the write could have affected.
func (s *Service) CreateStudent(ctx context.Context, principal *identity.Principal, input CreateStudentInput) (*models.Student, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, writeRoles, ""); err != nil {
		return nil, err
	}

	if !input.ClassID.IsNil() {
		if _, err := s.store.FindClass(ctx, schoolID, input.ClassID); err != nil {
			return nil, translate(err, "find class")
		}
	}

	student, err := models.NewStudent(
		id.StudentID(uuid.New()), schoolID, input.ClassID,
		input.FirstName, input.LastName, input.AdmissionNo,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateStudent(ctx, student); err != nil {
		return nil, translate(err, "create student")
	}

	s.cache.Invalidate(ctx, cache.StudentWriteSet(schoolID, student.ClassID)...)
	return student, nil
}

// ListClasses returns the school's classes, cached.
func (s *Service) ListClasses(ctx context.Context, principal *identity.Principal) ([]*models.Class, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, readRoles, ""); err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, cache.ClassesKey(schoolID), s.ttl, func(ctx context.Context) ([]*models.Class, error) {
		classes, err := s.store.ListClasses(ctx, schoolID)
		if err != nil {
			return nil, translate(err, "list classes")
		}
		return classes, nil
	})
}

// CreateClassInput carries the fields a caller may set.
type CreateClassInput struct {
	Name      string
	TeacherID id.UserID
}

// CreateClass adds a class to the resolved school and invalidates the class
// list key.
func (s *Service) CreateClass(ctx context.Context, principal *identity.Principal, input CreateClassInput) (*models.Class, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, writeRoles, ""); err != nil {
		return nil, err
	}

	class, err := models.NewClass(id.ClassID(uuid.New()), schoolID, input.Name, input.TeacherID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateClass(ctx, class); err != nil {
		return nil, translate(err, "create class")
	}

	s.cache.Invalidate(ctx, cache.ClassWriteSet(schoolID)...)
	return class, nil
}

func translate(err error, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "already exists")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
	}
}
