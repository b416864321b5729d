package store

import (
	"context"
	"sort"
	"sync"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"

	"ballotbox/internal/election/models"
)

// InMemoryElectionStore keeps elections in a map guarded by a mutex.
type InMemoryElectionStore struct {
	mu        sync.RWMutex
	elections map[id.ElectionID]*models.Election
}

func NewInMemoryElectionStore() *InMemoryElectionStore {
	return &InMemoryElectionStore{elections: make(map[id.ElectionID]*models.Election)}
}

func (s *InMemoryElectionStore) Create(_ context.Context, election *models.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.elections[election.ID]; exists {
		return sentinel.ErrConflict
	}
	cloned := *election
	s.elections[election.ID] = &cloned
	return nil
}

func (s *InMemoryElectionStore) Update(_ context.Context, election *models.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.elections[election.ID]; !exists {
		return sentinel.ErrNotFound
	}
	cloned := *election
	s.elections[election.ID] = &cloned
	return nil
}

func (s *InMemoryElectionStore) FindByID(_ context.Context, electionID id.ElectionID) (*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[electionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *election
	return &cloned, nil
}

func (s *InMemoryElectionStore) Delete(_ context.Context, electionID id.ElectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.elections[electionID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.elections, electionID)
	return nil
}

func (s *InMemoryElectionStore) List(_ context.Context) ([]*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*models.Election) bool { return true }), nil
}

func (s *InMemoryElectionStore) ListActive(_ context.Context) ([]*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(e *models.Election) bool { return e.IsActive }), nil
}

func (s *InMemoryElectionStore) CountActive(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.elections {
		if e.IsActive {
			count++
		}
	}
	return count, nil
}

// collect returns matching elections newest first. Callers hold the lock.
func (s *InMemoryElectionStore) collect(match func(*models.Election) bool) []*models.Election {
	var elections []*models.Election
	for _, e := range s.elections {
		if match(e) {
			cloned := *e
			elections = append(elections, &cloned)
		}
	}
	sort.Slice(elections, func(i, j int) bool {
		return elections[i].CreatedAt.After(elections[j].CreatedAt)
	})
	return elections
}
