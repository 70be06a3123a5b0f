package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"campus/internal/certificate/models"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Error contract matches the leave store: ErrNotFound for absent or
// cross-school ids, ErrInvalidState for failed PENDING preconditions.

// InMemoryCertificateStore stores certificate requests in memory for tests
// and development.
type InMemoryCertificateStore struct {
	mu       sync.RWMutex
	requests map[id.CertificateID]*models.CertificateRequest
}

// NewInMemoryCertificateStore constructs an empty in-memory store.
func NewInMemoryCertificateStore() *InMemoryCertificateStore {
	return &InMemoryCertificateStore{requests: make(map[id.CertificateID]*models.CertificateRequest)}
}

func (s *InMemoryCertificateStore) Create(_ context.Context, request *models.CertificateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[request.ID]; ok {
		return fmt.Errorf("certificate request %s: %w", request.ID, sentinel.ErrConflict)
	}
	copied := *request
	s.requests[request.ID] = &copied
	return nil
}

func (s *InMemoryCertificateStore) FindByID(_ context.Context, schoolID id.SchoolID, certID id.CertificateID) (*models.CertificateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[certID]
	if !ok || request.SchoolID != schoolID {
		return nil, fmt.Errorf("certificate request %s: %w", certID, sentinel.ErrNotFound)
	}
	copied := *request
	return &copied, nil
}

func (s *InMemoryCertificateStore) List(_ context.Context, schoolID id.SchoolID, status workflow.Status) ([]*models.CertificateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CertificateRequest, 0)
	for _, request := range s.requests {
		if request.SchoolID != schoolID {
			continue
		}
		if status != "" && request.Status != status {
			continue
		}
		copied := *request
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Transition moves a PENDING request to a terminal status under the store
// lock; see the leave store for the contract.
func (s *InMemoryCertificateStore) Transition(ctx context.Context, schoolID id.SchoolID, certID id.CertificateID, target workflow.Status, remarks string, decidedBy id.UserID) (*models.CertificateRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[certID]
	if !ok || request.SchoolID != schoolID {
		return nil, fmt.Errorf("certificate request %s: %w", certID, sentinel.ErrNotFound)
	}
	if request.Status != workflow.StatusPending {
		return nil, fmt.Errorf("certificate request %s is %s: %w", certID, request.Status, sentinel.ErrInvalidState)
	}
	request.Status = target
	request.Remarks = remarks
	request.DecidedBy = decidedBy
	request.UpdatedAt = requestcontext.Now(ctx)
	copied := *request
	return &copied, nil
}
