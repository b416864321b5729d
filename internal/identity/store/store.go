package store

import (
	"context"

	id "ballotbox/pkg/domain"

	"ballotbox/internal/identity/models"
)

// UserStore persists users. Implementations return sentinel errors:
// sentinel.ErrNotFound for missing users and sentinel.ErrConflict when the
// phone or email unique constraint rejects a write.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, userID id.UserID) error
	List(ctx context.Context) ([]*models.User, error)
	// ListPendingApproval returns phone-verified users still awaiting admin
	// approval, oldest first.
	ListPendingApproval(ctx context.Context) ([]*models.User, error)
	// CountEligibleVoters counts verified users with role VOTER or CANDIDATE.
	// This is the global electorate, independent of any particular election.
	CountEligibleVoters(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role id.Role) (int, error)
	// CountPendingApproval counts phone-verified users awaiting approval.
	CountPendingApproval(ctx context.Context) (int, error)
}
