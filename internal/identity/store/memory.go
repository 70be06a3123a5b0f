package store

import (
	"context"
	"fmt"
	"sync"

	"campus/internal/identity/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Error contract (all account stores):
// - Return sentinel.ErrNotFound (wrapped) when the account does not exist
// - Return nil for successful operations, including no-op idempotent updates
// - Wrap infrastructure failures with context

// InMemoryAccountStore stores accounts in memory for tests and development.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[id.UserID]*models.Account
}

// NewInMemoryAccountStore constructs an empty in-memory account store.
func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{accounts: make(map[id.UserID]*models.Account)}
}

func (s *InMemoryAccountStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; ok {
		return fmt.Errorf("account %s: %w", account.ID, sentinel.ErrConflict)
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *InMemoryAccountStore) FindByID(_ context.Context, userID id.UserID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[userID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", userID, sentinel.ErrNotFound)
	}
	copied := *account
	return &copied, nil
}

// SetSchoolID persists a resolved school id onto the account. Writing the
// value already present is a no-op, so concurrent resolutions of the same
// principal are safe.
func (s *InMemoryAccountStore) SetSchoolID(ctx context.Context, userID id.UserID, schoolID id.SchoolID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[userID]
	if !ok {
		return fmt.Errorf("account %s: %w", userID, sentinel.ErrNotFound)
	}
	if account.SchoolID == schoolID {
		return nil
	}
	account.SchoolID = schoolID
	account.UpdatedAt = requestcontext.Now(ctx)
	return nil
}
