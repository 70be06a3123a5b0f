// Package service implements platform-level school administration: creating
// tenant records, assigning admins and staff, and flipping activation status.
// These operations sit behind the admin token, not the session guard; they are
// how tenants come to exist before any principal can resolve into them.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"campus/internal/school/models"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Store is the persistence port for school records and staff relations.
type Store interface {
	Create(ctx context.Context, school *models.School) error
	FindByID(ctx context.Context, schoolID id.SchoolID) (*models.School, error)
	FindBySlug(ctx context.Context, slug string) (*models.School, error)
	Update(ctx context.Context, school *models.School) error
	SetAdmin(ctx context.Context, userID id.UserID, schoolID id.SchoolID) error
	SetStaff(ctx context.Context, userID id.UserID, schoolID id.SchoolID) error
}

// Service orchestrates school administration operations.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new school. Slugs are unique across the platform; a
// duplicate surfaces as Conflict.
func (s *Service) Create(ctx context.Context, name, slug string) (*models.School, error) {
	school, err := models.NewSchool(id.SchoolID(uuid.New()), name, slug, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, school); err != nil {
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "school created",
		"school_id", school.ID,
		"slug", school.Slug,
	)
	return school, nil
}

// Get returns a school by id.
func (s *Service) Get(ctx context.Context, schoolID id.SchoolID) (*models.School, error) {
	school, err := s.store.FindByID(ctx, schoolID)
	if err != nil {
		return nil, translate(err)
	}
	return school, nil
}

// AssignAdmin records userID as an admin of the school. Re-assignment is
// idempotent.
func (s *Service) AssignAdmin(ctx context.Context, schoolID id.SchoolID, userID id.UserID) error {
	if _, err := s.store.FindByID(ctx, schoolID); err != nil {
		return translate(err)
	}
	if err := s.store.SetAdmin(ctx, userID, schoolID); err != nil {
		return translate(err)
	}
	return nil
}

// AssignStaff records userID as teaching staff of the school.
func (s *Service) AssignStaff(ctx context.Context, schoolID id.SchoolID, userID id.UserID) error {
	if _, err := s.store.FindByID(ctx, schoolID); err != nil {
		return translate(err)
	}
	if err := s.store.SetStaff(ctx, userID, schoolID); err != nil {
		return translate(err)
	}
	return nil
}

// Deactivate takes a school out of service. Principals of an inactive school
// stop resolving; their requests fail with tenant not found until the school
// is reactivated.
func (s *Service) Deactivate(ctx context.Context, schoolID id.SchoolID) (*models.School, error) {
	return s.setStatus(ctx, schoolID, func(school *models.School) error {
		return school.Deactivate(requestcontext.Now(ctx))
	})
}

// Reactivate returns a deactivated school to service.
func (s *Service) Reactivate(ctx context.Context, schoolID id.SchoolID) (*models.School, error) {
	return s.setStatus(ctx, schoolID, func(school *models.School) error {
		return school.Reactivate(requestcontext.Now(ctx))
	})
}

func (s *Service) setStatus(ctx context.Context, schoolID id.SchoolID, transition func(*models.School) error) (*models.School, error) {
	school, err := s.store.FindByID(ctx, schoolID)
	if err != nil {
		return nil, translate(err)
	}
	if err := transition(school); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, school); err != nil {
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "school status changed",
		"school_id", school.ID,
		"status", school.Status,
	)
	return school, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "school not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "school slug already in use")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "school store failure")
	}
}
