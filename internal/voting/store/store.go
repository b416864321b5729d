// Package store persists the vote ledger.
package store

import (
	"context"

	id "ballotbox/pkg/domain"

	"ballotbox/internal/voting/models"
)

// VoteStore is the persistence contract for the vote ledger.
//
// Create must be atomic insert-or-fail on the (voter, election) slot and
// return sentinel.ErrConflict when the slot is taken. This constraint, not
// the service's pre-check, is what makes concurrent duplicate casts safe.
type VoteStore interface {
	Create(ctx context.Context, vote *models.Vote) error
	FindByVoterAndElection(ctx context.Context, voterID id.UserID, electionID id.ElectionID) (*models.Vote, error)

	ListByVoter(ctx context.Context, voterID id.UserID) ([]*models.Vote, error)
	ListAll(ctx context.Context) ([]*models.Vote, error)

	CountByElection(ctx context.Context, electionID id.ElectionID) (int, error)
	CountByCandidate(ctx context.Context, candidateID id.CandidateID) (int, error)
	CountByVoter(ctx context.Context, voterID id.UserID) (int, error)
	CountAll(ctx context.Context) (int, error)
}
