// Package store persists nominations.
package store

import (
	"context"

	id "ballotbox/pkg/domain"

	"ballotbox/internal/candidacy/models"
)

// CandidacyStore is the persistence contract for nominations. Implementations
// return sentinel errors; Create must fail with sentinel.ErrConflict when a
// nomination already exists for the same (user, election) pair.
type CandidacyStore interface {
	Create(ctx context.Context, candidacy *models.Candidacy) error
	Update(ctx context.Context, candidacy *models.Candidacy) error
	FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidacy, error)
	Delete(ctx context.Context, candidateID id.CandidateID) error

	List(ctx context.Context) ([]*models.Candidacy, error)
	ListByElection(ctx context.Context, electionID id.ElectionID) ([]*models.Candidacy, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Candidacy, error)
	ListPending(ctx context.Context) ([]*models.Candidacy, error)

	CountApproved(ctx context.Context) (int, error)
}
