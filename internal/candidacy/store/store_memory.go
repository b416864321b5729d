package store

import (
	"context"
	"sort"
	"sync"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"

	"ballotbox/internal/candidacy/models"
)

type nominationKey struct {
	userID     id.UserID
	electionID id.ElectionID
}

// InMemoryCandidacyStore keeps nominations in maps guarded by a mutex. The
// (user, election) index enforces the same uniqueness the SQL schema does.
type InMemoryCandidacyStore struct {
	mu         sync.RWMutex
	candidates map[id.CandidateID]*models.Candidacy
	byPair     map[nominationKey]id.CandidateID
}

func NewInMemoryCandidacyStore() *InMemoryCandidacyStore {
	return &InMemoryCandidacyStore{
		candidates: make(map[id.CandidateID]*models.Candidacy),
		byPair:     make(map[nominationKey]id.CandidateID),
	}
}

func (s *InMemoryCandidacyStore) Create(_ context.Context, candidacy *models.Candidacy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.candidates[candidacy.ID]; exists {
		return sentinel.ErrConflict
	}
	key := nominationKey{userID: candidacy.UserID, electionID: candidacy.ElectionID}
	if _, exists := s.byPair[key]; exists {
		return sentinel.ErrConflict
	}
	cloned := *candidacy
	s.candidates[candidacy.ID] = &cloned
	s.byPair[key] = candidacy.ID
	return nil
}

func (s *InMemoryCandidacyStore) Update(_ context.Context, candidacy *models.Candidacy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.candidates[candidacy.ID]; !exists {
		return sentinel.ErrNotFound
	}
	cloned := *candidacy
	s.candidates[candidacy.ID] = &cloned
	return nil
}

func (s *InMemoryCandidacyStore) FindByID(_ context.Context, candidateID id.CandidateID) (*models.Candidacy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidacy, ok := s.candidates[candidateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *candidacy
	return &cloned, nil
}

func (s *InMemoryCandidacyStore) Delete(_ context.Context, candidateID id.CandidateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidacy, ok := s.candidates[candidateID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byPair, nominationKey{userID: candidacy.UserID, electionID: candidacy.ElectionID})
	delete(s.candidates, candidateID)
	return nil
}

func (s *InMemoryCandidacyStore) List(_ context.Context) ([]*models.Candidacy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*models.Candidacy) bool { return true }, false), nil
}

func (s *InMemoryCandidacyStore) ListByElection(_ context.Context, electionID id.ElectionID) ([]*models.Candidacy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(c *models.Candidacy) bool { return c.ElectionID == electionID }, false), nil
}

func (s *InMemoryCandidacyStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Candidacy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(c *models.Candidacy) bool { return c.UserID == userID }, false), nil
}

// ListPending returns pending nominations oldest first, the review queue order.
func (s *InMemoryCandidacyStore) ListPending(_ context.Context) ([]*models.Candidacy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(c *models.Candidacy) bool { return c.Status == models.StatusPending }, true), nil
}

func (s *InMemoryCandidacyStore) CountApproved(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, c := range s.candidates {
		if c.Status == models.StatusApproved {
			count++
		}
	}
	return count, nil
}

// collect returns matching nominations, newest first unless oldestFirst is
// set. Callers hold the lock.
func (s *InMemoryCandidacyStore) collect(match func(*models.Candidacy) bool, oldestFirst bool) []*models.Candidacy {
	var candidates []*models.Candidacy
	for _, c := range s.candidates {
		if match(c) {
			cloned := *c
			candidates = append(candidates, &cloned)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if oldestFirst {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return candidates
}
