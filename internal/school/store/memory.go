package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"campus/internal/school/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
)

// Error contract (all school stores):
// - Return sentinel.ErrNotFound (wrapped) when a school or relation is absent
// - Return sentinel.ErrConflict on slug collisions
// - Wrap infrastructure failures with context

// InMemorySchoolStore stores schools and staff relations in memory for tests
// and development.
type InMemorySchoolStore struct {
	mu      sync.RWMutex
	schools map[id.SchoolID]*models.School
	bySlug  map[string]id.SchoolID
	adminOf map[id.UserID]id.SchoolID
	staffOf map[id.UserID]id.SchoolID
}

// NewInMemorySchoolStore constructs an empty in-memory school store.
func NewInMemorySchoolStore() *InMemorySchoolStore {
	return &InMemorySchoolStore{
		schools: make(map[id.SchoolID]*models.School),
		bySlug:  make(map[string]id.SchoolID),
		adminOf: make(map[id.UserID]id.SchoolID),
		staffOf: make(map[id.UserID]id.SchoolID),
	}
}

func (s *InMemorySchoolStore) Create(_ context.Context, school *models.School) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slug := strings.ToLower(school.Slug)
	if _, ok := s.bySlug[slug]; ok {
		return fmt.Errorf("school slug %q: %w", slug, sentinel.ErrConflict)
	}
	copied := *school
	s.schools[school.ID] = &copied
	s.bySlug[slug] = school.ID
	return nil
}

func (s *InMemorySchoolStore) FindByID(_ context.Context, schoolID id.SchoolID) (*models.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	school, ok := s.schools[schoolID]
	if !ok {
		return nil, fmt.Errorf("school %s: %w", schoolID, sentinel.ErrNotFound)
	}
	copied := *school
	return &copied, nil
}

func (s *InMemorySchoolStore) FindBySlug(_ context.Context, slug string) (*models.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schoolID, ok := s.bySlug[strings.ToLower(slug)]
	if !ok {
		return nil, fmt.Errorf("school slug %q: %w", slug, sentinel.ErrNotFound)
	}
	copied := *s.schools[schoolID]
	return &copied, nil
}

func (s *InMemorySchoolStore) Update(_ context.Context, school *models.School) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schools[school.ID]; !ok {
		return fmt.Errorf("school %s: %w", school.ID, sentinel.ErrNotFound)
	}
	copied := *school
	s.schools[school.ID] = &copied
	return nil
}

// SetAdmin records the admin-of relation used by tenant resolution.
func (s *InMemorySchoolStore) SetAdmin(_ context.Context, userID id.UserID, schoolID id.SchoolID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminOf[userID] = schoolID
	return nil
}

// SetStaff records the direct teacher-of-school relation.
func (s *InMemorySchoolStore) SetStaff(_ context.Context, userID id.UserID, schoolID id.SchoolID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staffOf[userID] = schoolID
	return nil
}

// SchoolAdministeredBy returns the school the user administers.
func (s *InMemorySchoolStore) SchoolAdministeredBy(_ context.Context, userID id.UserID) (id.SchoolID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schoolID, ok := s.adminOf[userID]
	if !ok {
		return id.SchoolID{}, fmt.Errorf("admin relation for %s: %w", userID, sentinel.ErrNotFound)
	}
	return schoolID, nil
}

// SchoolStaffedBy returns the school the user is attached to as staff.
func (s *InMemorySchoolStore) SchoolStaffedBy(_ context.Context, userID id.UserID) (id.SchoolID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schoolID, ok := s.staffOf[userID]
	if !ok {
		return id.SchoolID{}, fmt.Errorf("staff relation for %s: %w", userID, sentinel.ErrNotFound)
	}
	return schoolID, nil
}
