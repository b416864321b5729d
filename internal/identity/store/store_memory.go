package store

import (
	"context"
	"sort"
	"sync"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"

	"ballotbox/internal/identity/models"
)

// InMemoryUserStore keeps users in maps guarded by a mutex. The phone and
// email indexes enforce the same uniqueness the postgres schema does, so
// service behavior is identical across flavors.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byPhone map[string]id.UserID
	byEmail map[string]id.UserID
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byPhone: make(map[string]id.UserID),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byPhone[user.Phone]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return sentinel.ErrConflict
	}
	cloned := *user
	s.users[user.ID] = &cloned
	s.byPhone[user.Phone] = user.ID
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if other, exists := s.byPhone[user.Phone]; exists && other != user.ID {
		return sentinel.ErrConflict
	}
	if other, exists := s.byEmail[user.Email]; exists && other != user.ID {
		return sentinel.ErrConflict
	}
	delete(s.byPhone, existing.Phone)
	delete(s.byEmail, existing.Email)
	cloned := *user
	s.users[user.ID] = &cloned
	s.byPhone[user.Phone] = user.ID
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *user
	return &cloned, nil
}

func (s *InMemoryUserStore) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byPhone[phone]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *s.users[userID]
	return &cloned, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *s.users[userID]
	return &cloned, nil
}

func (s *InMemoryUserStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byPhone, user.Phone)
	delete(s.byEmail, user.Email)
	delete(s.users, userID)
	return nil
}

func (s *InMemoryUserStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		cloned := *user
		users = append(users, &cloned)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (s *InMemoryUserStore) ListPendingApproval(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var users []*models.User
	for _, user := range s.users {
		if user.IsPhoneVerified && !user.IsVerified {
			cloned := *user
			users = append(users, &cloned)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *InMemoryUserStore) CountEligibleVoters(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.EligibleVoter() {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryUserStore) CountByRole(_ context.Context, role id.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryUserStore) CountPendingApproval(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.IsPhoneVerified && !user.IsVerified {
			count++
		}
	}
	return count, nil
}
