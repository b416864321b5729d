package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"

	"ballotbox/internal/voting/models"
)

func newVote(voterID id.UserID, electionID id.ElectionID) *models.Vote {
	return &models.Vote{
		ID:          id.NewVoteID(),
		VoterID:     voterID,
		ElectionID:  electionID,
		CandidateID: id.NewCandidateID(),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestCreateRejectsSecondVoteForSlot(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryVoteStore()
	voterID := id.NewUserID()
	electionID := id.NewElectionID()

	if err := store.Create(ctx, newVote(voterID, electionID)); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	err := store.Create(ctx, newVote(voterID, electionID))
	if !errors.Is(err, sentinel.ErrConflict) {
		t.Fatalf("expected ErrConflict for second vote, got %v", err)
	}

	// Same voter, different election is a different slot.
	if err := store.Create(ctx, newVote(voterID, id.NewElectionID())); err != nil {
		t.Fatalf("vote in second election failed: %v", err)
	}
}

func TestCreateIsAtomicUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryVoteStore()
	voterID := id.NewUserID()
	electionID := id.NewElectionID()

	const attempts = 64
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = store.Create(ctx, newVote(voterID, electionID))
		}()
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, sentinel.ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 successful insert, got %d", successes)
	}

	count, err := store.CountByElection(ctx, electionID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 vote in ledger, got %d", count)
	}
}

func TestFindByVoterAndElection(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryVoteStore()
	vote := newVote(id.NewUserID(), id.NewElectionID())

	if _, err := store.FindByVoterAndElection(ctx, vote.VoterID, vote.ElectionID); !errors.Is(err, sentinel.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before insert, got %v", err)
	}
	if err := store.Create(ctx, vote); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	found, err := store.FindByVoterAndElection(ctx, vote.VoterID, vote.ElectionID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.ID != vote.ID {
		t.Fatalf("expected vote %s, got %s", vote.ID, found.ID)
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryVoteStore()
	electionID := id.NewElectionID()
	candidateID := id.NewCandidateID()

	for n := 0; n < 3; n++ {
		vote := newVote(id.NewUserID(), electionID)
		vote.CandidateID = candidateID
		if err := store.Create(ctx, vote); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if err := store.Create(ctx, newVote(id.NewUserID(), id.NewElectionID())); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byElection, _ := store.CountByElection(ctx, electionID)
	if byElection != 3 {
		t.Fatalf("expected 3 votes in election, got %d", byElection)
	}
	byCandidate, _ := store.CountByCandidate(ctx, candidateID)
	if byCandidate != 3 {
		t.Fatalf("expected 3 votes for candidate, got %d", byCandidate)
	}
	all, _ := store.CountAll(ctx)
	if all != 4 {
		t.Fatalf("expected 4 votes total, got %d", all)
	}
}
