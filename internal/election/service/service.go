// Package service implements admin-facing election lifecycle management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"

	"ballotbox/internal/election/models"
	"ballotbox/internal/election/store"
)

// VoteCounter reports how many votes an election holds. Injected from the
// voting module; an election with votes cannot be deleted.
type VoteCounter interface {
	CountByElection(ctx context.Context, electionID id.ElectionID) (int, error)
}

// Service orchestrates election lifecycle management.
type Service struct {
	elections store.ElectionStore
	votes     VoteCounter
	logger    *slog.Logger
}

func New(elections store.ElectionStore, votes VoteCounter, logger *slog.Logger) *Service {
	return &Service{elections: elections, votes: votes, logger: logger}
}

// CreateInput carries validated election fields.
type CreateInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// Create registers a new election, initially inactive and unpublished.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Election, error) {
	election, err := models.NewElection(id.NewElectionID(), input.Name, input.Description,
		input.StartDate, input.EndDate, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.elections.Create(ctx, election); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create election")
	}
	s.logger.InfoContext(ctx, "election created", "election_id", election.ID, "name", election.Name)
	return election, nil
}

// Get fetches a single election.
func (s *Service) Get(ctx context.Context, electionID id.ElectionID) (*models.Election, error) {
	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		return nil, wrapElectionErr(err)
	}
	return election, nil
}

// List returns all elections, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Election, error) {
	elections, err := s.elections.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list elections")
	}
	return elections, nil
}

// ListActive returns elections with the active flag set. Public surface; the
// flag alone does not mean the window is open.
func (s *Service) ListActive(ctx context.Context) ([]*models.Election, error) {
	elections, err := s.elections.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active elections")
	}
	return elections, nil
}

// UpdateInput carries optional updates; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Update applies field changes, revalidating the window when either bound moves.
func (s *Service) Update(ctx context.Context, electionID id.ElectionID, input UpdateInput) (*models.Election, error) {
	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		return nil, wrapElectionErr(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "election name is required")
		}
		election.Name = name
	}
	if input.Description != nil {
		election.Description = strings.TrimSpace(*input.Description)
	}
	if input.StartDate != nil {
		election.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		election.EndDate = *input.EndDate
	}
	if !election.EndDate.After(election.StartDate) {
		return nil, dErrors.New(dErrors.CodeValidation, "end date must be after start date")
	}

	election.UpdatedAt = requestcontext.Now(ctx)
	if err := s.elections.Update(ctx, election); err != nil {
		return nil, wrapElectionErr(err)
	}
	return election, nil
}

// Delete removes an election that has no recorded votes.
func (s *Service) Delete(ctx context.Context, electionID id.ElectionID) error {
	if _, err := s.elections.FindByID(ctx, electionID); err != nil {
		return wrapElectionErr(err)
	}
	votes, err := s.votes.CountByElection(ctx, electionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count election votes")
	}
	if votes > 0 {
		return dErrors.New(dErrors.CodeInvalidState, "cannot delete election with recorded votes")
	}
	if err := s.elections.Delete(ctx, electionID); err != nil {
		return wrapElectionErr(err)
	}
	s.logger.InfoContext(ctx, "election deleted", "election_id", electionID)
	return nil
}

// ToggleActive flips the admin-controlled active flag.
func (s *Service) ToggleActive(ctx context.Context, electionID id.ElectionID) (*models.Election, error) {
	return s.toggle(ctx, electionID, func(e *models.Election) {
		e.IsActive = !e.IsActive
	})
}

// ToggleResultsPublished flips the publication gate.
func (s *Service) ToggleResultsPublished(ctx context.Context, electionID id.ElectionID) (*models.Election, error) {
	return s.toggle(ctx, electionID, func(e *models.Election) {
		e.IsResultsPublished = !e.IsResultsPublished
	})
}

func (s *Service) toggle(ctx context.Context, electionID id.ElectionID, apply func(*models.Election)) (*models.Election, error) {
	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		return nil, wrapElectionErr(err)
	}
	apply(election)
	election.UpdatedAt = requestcontext.Now(ctx)
	if err := s.elections.Update(ctx, election); err != nil {
		return nil, wrapElectionErr(err)
	}
	s.logger.InfoContext(ctx, "election toggled",
		"election_id", election.ID,
		"is_active", election.IsActive,
		"is_results_published", election.IsResultsPublished,
	)
	return election, nil
}

// CountActive implements the stats counter used by the admin dashboard.
func (s *Service) CountActive(ctx context.Context) (int, error) {
	return s.elections.CountActive(ctx)
}

func wrapElectionErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "election not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "election store failure")
}
