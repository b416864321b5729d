package store

import (
	"context"

	id "ballotbox/pkg/domain"

	"ballotbox/internal/election/models"
)

// ElectionStore persists elections. Implementations return
// sentinel.ErrNotFound for missing elections.
type ElectionStore interface {
	Create(ctx context.Context, election *models.Election) error
	Update(ctx context.Context, election *models.Election) error
	FindByID(ctx context.Context, electionID id.ElectionID) (*models.Election, error)
	Delete(ctx context.Context, electionID id.ElectionID) error
	List(ctx context.Context) ([]*models.Election, error)
	ListActive(ctx context.Context) ([]*models.Election, error)
	CountActive(ctx context.Context) (int, error)
}
