// Package service implements the voting engine: eligibility checks, the
// one-vote-per-election ledger write, and result aggregation.
//
// Voter identity verification is not re-checked here. Login only issues
// tokens to fully verified users, so any authenticated caller reaching
// CastVote has already passed both verification gates.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"

	candidacymodels "ballotbox/internal/candidacy/models"
	electionmodels "ballotbox/internal/election/models"
	identitymodels "ballotbox/internal/identity/models"
	"ballotbox/internal/voting/metrics"
	"ballotbox/internal/voting/models"
	"ballotbox/internal/voting/store"
)

// UserStore is the identity surface the engine reads. Satisfied by the
// identity store.
type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*identitymodels.User, error)
	CountEligibleVoters(ctx context.Context) (int, error)
}

// ElectionStore resolves elections. Satisfied by the election store.
type ElectionStore interface {
	FindByID(ctx context.Context, electionID id.ElectionID) (*electionmodels.Election, error)
}

// CandidacyStore resolves candidacies. Satisfied by the candidacy store.
type CandidacyStore interface {
	FindByID(ctx context.Context, candidateID id.CandidateID) (*candidacymodels.Candidacy, error)
	ListByElection(ctx context.Context, electionID id.ElectionID) ([]*candidacymodels.Candidacy, error)
}

// Service is the voting engine.
type Service struct {
	votes       store.VoteStore
	users       UserStore
	elections   ElectionStore
	candidacies CandidacyStore
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func New(votes store.VoteStore, users UserStore, elections ElectionStore, candidacies CandidacyStore, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		votes:       votes,
		users:       users,
		elections:   elections,
		candidacies: candidacies,
		metrics:     m,
		logger:      logger,
	}
}

// CastVote validates eligibility and appends one vote to the ledger.
//
// Checks run in a fixed order so each failure surfaces a distinct error:
// voter exists, election exists, election active, window open, candidate
// exists, candidate in this election, candidate approved, no prior vote.
// The final existence check is a fast path for a friendly error only; the
// store's unique constraint on (voter, election) is what actually closes
// the race between concurrent casts by the same voter.
func (s *Service) CastVote(ctx context.Context, voterID id.UserID, electionID id.ElectionID, candidateID id.CandidateID) (*models.VoteRecord, error) {
	start := time.Now()

	voter, err := s.users.FindByID(ctx, voterID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "voter not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up voter")
	}

	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up election")
	}
	if !election.IsActive {
		return nil, dErrors.New(dErrors.CodeInvalidState, "election is not active")
	}
	if !election.WindowContains(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeInvalidState, "election is not currently open for voting")
	}

	candidate, err := s.candidacies.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up candidate")
	}
	if candidate.ElectionID != electionID {
		return nil, dErrors.New(dErrors.CodeInvalidState, "candidate is not running in this election")
	}
	if candidate.Status != candidacymodels.StatusApproved {
		return nil, dErrors.New(dErrors.CodeInvalidState, "candidate is not approved")
	}

	if _, err := s.votes.FindByVoterAndElection(ctx, voterID, electionID); err == nil {
		s.metrics.IncrementDuplicateRejected()
		return nil, dErrors.New(dErrors.CodeConflict, "you have already voted in this election")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for prior vote")
	}

	vote := &models.Vote{
		ID:          id.NewVoteID(),
		VoterID:     voterID,
		ElectionID:  electionID,
		CandidateID: candidateID,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.votes.Create(ctx, vote); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementDuplicateRejected()
			return nil, dErrors.New(dErrors.CodeConflict, "you have already voted in this election")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record vote")
	}

	s.metrics.IncrementVotesCast()
	s.metrics.ObserveCast(start)
	s.logger.InfoContext(ctx, "vote cast",
		"vote_id", vote.ID,
		"voter_id", voter.ID,
		"election_id", electionID,
		"candidate_id", candidateID,
	)

	record := &models.VoteRecord{Vote: *vote}
	record.Election = &models.ElectionSummary{ID: election.ID, Name: election.Name}
	record.Candidate = s.candidateSummary(ctx, candidate)
	return record, nil
}

// HasVoted reports whether the voter already holds a vote for the election.
// Read-only, allowed regardless of publication state.
func (s *Service) HasVoted(ctx context.Context, voterID id.UserID, electionID id.ElectionID) (bool, error) {
	_, err := s.votes.FindByVoterAndElection(ctx, voterID, electionID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for prior vote")
}

// History returns the voter's votes, newest first, with election and
// candidate summaries attached.
func (s *Service) History(ctx context.Context, voterID id.UserID) ([]*models.VoteRecord, error) {
	votes, err := s.votes.ListByVoter(ctx, voterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list votes")
	}
	return s.joinRecords(ctx, votes, false)
}

// AllVotes returns the full ledger with voter identities. Admin surface.
func (s *Service) AllVotes(ctx context.Context) ([]*models.VoteRecord, error) {
	votes, err := s.votes.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list votes")
	}
	return s.joinRecords(ctx, votes, true)
}

// Results aggregates an election: total votes, the global eligible-voter
// count, and one tally per approved candidate. Candidates with zero votes
// appear with count 0. The aggregation always computes the full payload;
// visibility under the publication gate is the boundary layer's decision.
func (s *Service) Results(ctx context.Context, electionID id.ElectionID) (*models.ElectionResults, error) {
	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up election")
	}

	candidates, err := s.candidacies.ListByElection(ctx, electionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	approved := candidates[:0:0]
	for _, c := range candidates {
		if c.Status == candidacymodels.StatusApproved {
			approved = append(approved, c)
		}
	}

	results := &models.ElectionResults{
		Election: models.ResultsElection{
			ID:                 election.ID,
			Name:               election.Name,
			Description:        election.Description,
			IsResultsPublished: election.IsResultsPublished,
		},
		Candidates: make([]models.CandidateResult, len(approved)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.votes.CountByElection(gctx, electionID)
		if err != nil {
			return err
		}
		results.Election.TotalVotes = total
		return nil
	})
	g.Go(func() error {
		eligible, err := s.users.CountEligibleVoters(gctx)
		if err != nil {
			return err
		}
		results.Election.TotalEligibleVoters = eligible
		return nil
	})
	for i, candidate := range approved {
		i, candidate := i, candidate
		g.Go(func() error {
			votes, err := s.votes.CountByCandidate(gctx, candidate.ID)
			if err != nil {
				return err
			}
			summary := s.candidateSummary(gctx, candidate)
			results.Candidates[i] = models.CandidateResult{
				ID:    candidate.ID,
				Name:  summary.Name,
				Party: candidate.Party,
				Votes: votes,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate results")
	}

	// Ties keep retrieval order; there is no secondary sort key.
	sort.SliceStable(results.Candidates, func(i, j int) bool {
		return results.Candidates[i].Votes > results.Candidates[j].Votes
	})
	return results, nil
}

// candidateSummary resolves the nominated user's name for display. A missing
// user leaves the name empty rather than failing the read.
func (s *Service) candidateSummary(ctx context.Context, candidate *candidacymodels.Candidacy) *models.CandidateSummary {
	summary := &models.CandidateSummary{ID: candidate.ID, Party: candidate.Party}
	if user, err := s.users.FindByID(ctx, candidate.UserID); err == nil {
		summary.Name = user.Name
	}
	return summary
}

func (s *Service) joinRecords(ctx context.Context, votes []*models.Vote, includeVoter bool) ([]*models.VoteRecord, error) {
	records := make([]*models.VoteRecord, 0, len(votes))
	for _, vote := range votes {
		record := &models.VoteRecord{Vote: *vote}

		if includeVoter {
			if voter, err := s.users.FindByID(ctx, vote.VoterID); err == nil {
				record.Voter = &models.VoterSummary{ID: voter.ID, Name: voter.Name, Email: voter.Email}
			}
		}
		if election, err := s.elections.FindByID(ctx, vote.ElectionID); err == nil {
			endDate := election.EndDate
			record.Election = &models.ElectionSummary{ID: election.ID, Name: election.Name, EndDate: &endDate}
		}
		if candidate, err := s.candidacies.FindByID(ctx, vote.CandidateID); err == nil {
			record.Candidate = s.candidateSummary(ctx, candidate)
		}
		records = append(records, record)
	}
	return records, nil
}
