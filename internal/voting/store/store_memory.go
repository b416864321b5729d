package store

import (
	"context"
	"sort"
	"sync"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"

	"ballotbox/internal/voting/models"
)

type voteSlot struct {
	voterID    id.UserID
	electionID id.ElectionID
}

// InMemoryVoteStore keeps the ledger in maps guarded by a mutex. The slot
// index gives Create the same insert-or-fail semantics as the SQL unique
// index on (voter_id, election_id): under the lock, the second writer for a
// slot observes the first writer's entry and fails.
type InMemoryVoteStore struct {
	mu    sync.RWMutex
	votes map[id.VoteID]*models.Vote
	slots map[voteSlot]id.VoteID
}

func NewInMemoryVoteStore() *InMemoryVoteStore {
	return &InMemoryVoteStore{
		votes: make(map[id.VoteID]*models.Vote),
		slots: make(map[voteSlot]id.VoteID),
	}
}

func (s *InMemoryVoteStore) Create(_ context.Context, vote *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := voteSlot{voterID: vote.VoterID, electionID: vote.ElectionID}
	if _, taken := s.slots[slot]; taken {
		return sentinel.ErrConflict
	}
	cloned := *vote
	s.votes[vote.ID] = &cloned
	s.slots[slot] = vote.ID
	return nil
}

func (s *InMemoryVoteStore) FindByVoterAndElection(_ context.Context, voterID id.UserID, electionID id.ElectionID) (*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voteID, ok := s.slots[voteSlot{voterID: voterID, electionID: electionID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *s.votes[voteID]
	return &cloned, nil
}

func (s *InMemoryVoteStore) ListByVoter(_ context.Context, voterID id.UserID) ([]*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(v *models.Vote) bool { return v.VoterID == voterID }), nil
}

func (s *InMemoryVoteStore) ListAll(_ context.Context) ([]*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*models.Vote) bool { return true }), nil
}

func (s *InMemoryVoteStore) CountByElection(_ context.Context, electionID id.ElectionID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count(func(v *models.Vote) bool { return v.ElectionID == electionID }), nil
}

func (s *InMemoryVoteStore) CountByCandidate(_ context.Context, candidateID id.CandidateID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count(func(v *models.Vote) bool { return v.CandidateID == candidateID }), nil
}

func (s *InMemoryVoteStore) CountByVoter(_ context.Context, voterID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count(func(v *models.Vote) bool { return v.VoterID == voterID }), nil
}

func (s *InMemoryVoteStore) CountAll(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.votes), nil
}

// count tallies matching votes. Callers hold the lock.
func (s *InMemoryVoteStore) count(match func(*models.Vote) bool) int {
	count := 0
	for _, v := range s.votes {
		if match(v) {
			count++
		}
	}
	return count
}

// collect returns matching votes newest first. Callers hold the lock.
func (s *InMemoryVoteStore) collect(match func(*models.Vote) bool) []*models.Vote {
	var votes []*models.Vote
	for _, v := range s.votes {
		if match(v) {
			cloned := *v
			votes = append(votes, &cloned)
		}
	}
	sort.Slice(votes, func(i, j int) bool {
		return votes[i].CreatedAt.After(votes[j].CreatedAt)
	})
	return votes
}
