// Package service implements the nomination workflow: submission by users,
// review by admins, and the vote-guarded delete.
package service

import (
	"context"
	"errors"
	"log/slog"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"

	"ballotbox/internal/candidacy/models"
	"ballotbox/internal/candidacy/store"
	electionmodels "ballotbox/internal/election/models"
	identitymodels "ballotbox/internal/identity/models"
)

// UserFinder resolves users for nomination summaries. Satisfied by the
// identity store.
type UserFinder interface {
	FindByID(ctx context.Context, userID id.UserID) (*identitymodels.User, error)
}

// ElectionFinder resolves elections for nomination summaries. Satisfied by
// the election store.
type ElectionFinder interface {
	FindByID(ctx context.Context, electionID id.ElectionID) (*electionmodels.Election, error)
}

// VoteCounter reports how many votes a candidate holds. A candidate with
// votes cannot be deleted.
type VoteCounter interface {
	CountByCandidate(ctx context.Context, candidateID id.CandidateID) (int, error)
}

// Service orchestrates the nomination workflow.
type Service struct {
	candidacies store.CandidacyStore
	users       UserFinder
	elections   ElectionFinder
	votes       VoteCounter
	logger      *slog.Logger
}

func New(candidacies store.CandidacyStore, users UserFinder, elections ElectionFinder, votes VoteCounter, logger *slog.Logger) *Service {
	return &Service{
		candidacies: candidacies,
		users:       users,
		elections:   elections,
		votes:       votes,
		logger:      logger,
	}
}

// Nominate submits a pending candidacy for the calling user. One nomination
// per (user, election) pair; duplicates are a conflict.
func (s *Service) Nominate(ctx context.Context, userID id.UserID, electionID id.ElectionID, party string) (*models.Nomination, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up election")
	}

	candidacy, err := models.NewCandidacy(id.NewCandidateID(), userID, electionID, party, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.candidacies.Create(ctx, candidacy); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "nomination already exists for this election")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create nomination")
	}

	s.logger.InfoContext(ctx, "nomination submitted",
		"candidate_id", candidacy.ID,
		"user_id", userID,
		"election_id", electionID,
	)
	return &models.Nomination{
		Candidacy: *candidacy,
		User:      &models.UserRef{ID: user.ID, Name: user.Name, Email: user.Email},
		Election:  &models.ElectionRef{ID: election.ID, Name: election.Name},
	}, nil
}

// Get returns a single candidacy record without joins. Used by the voting
// engine's eligibility checks.
func (s *Service) Get(ctx context.Context, candidateID id.CandidateID) (*models.Candidacy, error) {
	candidacy, err := s.candidacies.FindByID(ctx, candidateID)
	if err != nil {
		return nil, wrapCandidacyErr(err)
	}
	return candidacy, nil
}

// ListAll returns every nomination with user contact details. Admin surface.
func (s *Service) ListAll(ctx context.Context) ([]*models.Nomination, error) {
	candidates, err := s.candidacies.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list nominations")
	}
	return s.enrichAll(ctx, candidates, true)
}

// ListByElection returns an election's approved candidates. This is the
// public ballot view; pending and rejected nominations never appear on it.
func (s *Service) ListByElection(ctx context.Context, electionID id.ElectionID) ([]*models.Nomination, error) {
	if _, err := s.elections.FindByID(ctx, electionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up election")
	}

	candidates, err := s.candidacies.ListByElection(ctx, electionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list nominations")
	}

	approved := candidates[:0:0]
	for _, c := range candidates {
		if c.Status == models.StatusApproved {
			approved = append(approved, c)
		}
	}
	return s.enrichAll(ctx, approved, false)
}

// ListMine returns the calling user's nominations across all elections.
func (s *Service) ListMine(ctx context.Context, userID id.UserID) ([]*models.Nomination, error) {
	candidates, err := s.candidacies.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list nominations")
	}
	return s.enrichAll(ctx, candidates, false)
}

// ListPending returns the admin review queue, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]*models.Nomination, error) {
	candidates, err := s.candidacies.ListPending(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending nominations")
	}
	return s.enrichAll(ctx, candidates, true)
}

// Approve moves a pending nomination to APPROVED.
func (s *Service) Approve(ctx context.Context, candidateID id.CandidateID) (*models.Nomination, error) {
	return s.review(ctx, candidateID, models.StatusApproved)
}

// Reject moves a pending nomination to REJECTED.
func (s *Service) Reject(ctx context.Context, candidateID id.CandidateID) (*models.Nomination, error) {
	return s.review(ctx, candidateID, models.StatusRejected)
}

func (s *Service) review(ctx context.Context, candidateID id.CandidateID, status models.Status) (*models.Nomination, error) {
	candidacy, err := s.candidacies.FindByID(ctx, candidateID)
	if err != nil {
		return nil, wrapCandidacyErr(err)
	}
	if candidacy.Status.Terminal() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "nomination has already been reviewed")
	}

	candidacy.Status = status
	candidacy.UpdatedAt = requestcontext.Now(ctx)
	if err := s.candidacies.Update(ctx, candidacy); err != nil {
		return nil, wrapCandidacyErr(err)
	}

	s.logger.InfoContext(ctx, "nomination reviewed",
		"candidate_id", candidacy.ID,
		"status", candidacy.Status,
	)
	return s.enrich(ctx, candidacy, false)
}

// Delete removes a nomination that holds no votes.
func (s *Service) Delete(ctx context.Context, candidateID id.CandidateID) error {
	if _, err := s.candidacies.FindByID(ctx, candidateID); err != nil {
		return wrapCandidacyErr(err)
	}
	votes, err := s.votes.CountByCandidate(ctx, candidateID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count candidate votes")
	}
	if votes > 0 {
		return dErrors.New(dErrors.CodeInvalidState, "cannot delete candidate with recorded votes")
	}
	if err := s.candidacies.Delete(ctx, candidateID); err != nil {
		return wrapCandidacyErr(err)
	}
	s.logger.InfoContext(ctx, "nomination deleted", "candidate_id", candidateID)
	return nil
}

// CountApproved implements the stats counter used by the admin dashboard.
func (s *Service) CountApproved(ctx context.Context) (int, error) {
	return s.candidacies.CountApproved(ctx)
}

// enrich joins one candidacy with its user, election, and vote count.
func (s *Service) enrich(ctx context.Context, candidacy *models.Candidacy, includePhone bool) (*models.Nomination, error) {
	nomination := &models.Nomination{Candidacy: *candidacy}

	user, err := s.users.FindByID(ctx, candidacy.UserID)
	if err == nil {
		ref := &models.UserRef{ID: user.ID, Name: user.Name, Email: user.Email}
		if includePhone {
			ref.Phone = user.Phone
		}
		nomination.User = ref
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	election, err := s.elections.FindByID(ctx, candidacy.ElectionID)
	if err == nil {
		nomination.Election = &models.ElectionRef{ID: election.ID, Name: election.Name}
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up election")
	}

	votes, err := s.votes.CountByCandidate(ctx, candidacy.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count candidate votes")
	}
	nomination.Votes = votes
	return nomination, nil
}

func (s *Service) enrichAll(ctx context.Context, candidates []*models.Candidacy, includePhone bool) ([]*models.Nomination, error) {
	nominations := make([]*models.Nomination, 0, len(candidates))
	for _, c := range candidates {
		nomination, err := s.enrich(ctx, c, includePhone)
		if err != nil {
			return nil, err
		}
		nominations = append(nominations, nomination)
	}
	return nominations, nil
}

func wrapCandidacyErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "candidate not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "candidacy store failure")
}
