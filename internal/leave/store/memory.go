package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"campus/internal/leave/models"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Error contract (all leave stores):
// - Return sentinel.ErrNotFound (wrapped) when a request is absent or in a
//   different school; the two are indistinguishable to callers
// - Return sentinel.ErrInvalidState (wrapped) when a transition's PENDING
//   precondition fails; the stored state is left untouched
// - Wrap infrastructure failures with context

// InMemoryLeaveStore stores leave requests in memory for tests and
// development. Transition holds the store lock across the state check and
// the mutation, mirroring the conditional UPDATE of the PostgreSQL variant.
type InMemoryLeaveStore struct {
	mu       sync.RWMutex
	requests map[id.LeaveID]*models.LeaveRequest
}

// NewInMemoryLeaveStore constructs an empty in-memory leave store.
func NewInMemoryLeaveStore() *InMemoryLeaveStore {
	return &InMemoryLeaveStore{requests: make(map[id.LeaveID]*models.LeaveRequest)}
}

func (s *InMemoryLeaveStore) Create(_ context.Context, request *models.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[request.ID]; ok {
		return fmt.Errorf("leave request %s: %w", request.ID, sentinel.ErrConflict)
	}
	copied := *request
	s.requests[request.ID] = &copied
	return nil
}

func (s *InMemoryLeaveStore) FindByID(_ context.Context, schoolID id.SchoolID, leaveID id.LeaveID) (*models.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[leaveID]
	if !ok || request.SchoolID != schoolID {
		return nil, fmt.Errorf("leave request %s: %w", leaveID, sentinel.ErrNotFound)
	}
	copied := *request
	return &copied, nil
}

func (s *InMemoryLeaveStore) List(_ context.Context, schoolID id.SchoolID, status workflow.Status) ([]*models.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.LeaveRequest, 0)
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

// Transition moves a PENDING request to a terminal status. The PENDING check
// and the mutation happen under one lock; a request already decided returns
// ErrInvalidState with its stored state unchanged.
func (s *InMemoryLeaveStore) Transition(ctx context.Context, schoolID id.SchoolID, leaveID id.LeaveID, target workflow.Status, remarks string, decidedBy id.UserID) (*models.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[leaveID]
	if !ok || request.SchoolID != schoolID {
		return nil, fmt.Errorf("leave request %s: %w", leaveID, sentinel.ErrNotFound)
	}
	if request.Status != workflow.StatusPending {
		return nil, fmt.Errorf("leave request %s is %s: %w", leaveID, request.Status, sentinel.ErrInvalidState)
	}
	request.Status = target
	request.Remarks = remarks
	request.DecidedBy = decidedBy
	request.UpdatedAt = requestcontext.Now(ctx)
	copied := *request
	return &copied, nil
}
