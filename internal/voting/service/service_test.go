package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/requestcontext"

	candidacymodels "ballotbox/internal/candidacy/models"
	candidacystore "ballotbox/internal/candidacy/store"
	electionmodels "ballotbox/internal/election/models"
	electionstore "ballotbox/internal/election/store"
	identitymodels "ballotbox/internal/identity/models"
	identitystore "ballotbox/internal/identity/store"
	"ballotbox/internal/voting/metrics"
	votingstore "ballotbox/internal/voting/store"
)

// One registration per test binary; promauto uses the default registry.
var testMetrics = metrics.New()

type VotingServiceSuite struct {
	suite.Suite
	users       *identitystore.InMemoryUserStore
	elections   *electionstore.InMemoryElectionStore
	candidacies *candidacystore.InMemoryCandidacyStore
	votes       *votingstore.InMemoryVoteStore
	service     *Service

	now time.Time
	ctx context.Context
}

func TestVotingServiceSuite(t *testing.T) {
	suite.Run(t, new(VotingServiceSuite))
}

func (s *VotingServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.users = identitystore.NewInMemoryUserStore()
	s.elections = electionstore.NewInMemoryElectionStore()
	s.candidacies = candidacystore.NewInMemoryCandidacyStore()
	s.votes = votingstore.NewInMemoryVoteStore()
	s.service = New(s.votes, s.users, s.elections, s.candidacies, testMetrics, logger)

	s.now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *VotingServiceSuite) createUser(name string, role id.Role, verified bool) *identitymodels.User {
	user := &identitymodels.User{
		ID:              id.NewUserID(),
		Name:            name,
		Email:           name + "@example.com",
		Phone:           "55500" + name,
		PasswordHash:    "x",
		Role:            role,
		IsPhoneVerified: verified,
		IsVerified:      verified,
		CreatedAt:       s.now,
		UpdatedAt:       s.now,
	}
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func (s *VotingServiceSuite) createElection(active bool, start, end time.Time) *electionmodels.Election {
	election := &electionmodels.Election{
		ID:        id.NewElectionID(),
		Name:      "General Election",
		StartDate: start,
		EndDate:   end,
		IsActive:  active,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.elections.Create(s.ctx, election))
	return election
}

func (s *VotingServiceSuite) createCandidacy(user *identitymodels.User, election *electionmodels.Election, status candidacymodels.Status) *candidacymodels.Candidacy {
	candidacy := &candidacymodels.Candidacy{
		ID:         id.NewCandidateID(),
		UserID:     user.ID,
		ElectionID: election.ID,
		Party:      "Independents",
		Status:     status,
		CreatedAt:  s.now,
		UpdatedAt:  s.now,
	}
	s.Require().NoError(s.candidacies.Create(s.ctx, candidacy))
	return candidacy
}

// openElection is an active election whose window covers s.now.
func (s *VotingServiceSuite) openElection() *electionmodels.Election {
	return s.createElection(true, s.now.Add(-time.Hour), s.now.Add(time.Hour))
}

// =============================================================================
// CastVote Tests
// =============================================================================

func (s *VotingServiceSuite) TestCastVote() {
	s.Run("accepts an eligible vote and returns the receipt", func() {
		voter := s.createUser("alice", id.RoleVoter, true)
		nominee := s.createUser("kim", id.RoleCandidate, true)
		election := s.openElection()
		candidate := s.createCandidacy(nominee, election, candidacymodels.StatusApproved)

		record, err := s.service.CastVote(s.ctx, voter.ID, election.ID, candidate.ID)
		s.Require().NoError(err)
		s.Equal(voter.ID, record.VoterID)
		s.Equal(election.ID, record.ElectionID)
		s.Equal(candidate.ID, record.CandidateID)
		s.Require().NotNil(record.Candidate)
		s.Equal("kim", record.Candidate.Name)
		s.Equal("Independents", record.Candidate.Party)
		s.Require().NotNil(record.Election)
		s.Equal(election.Name, record.Election.Name)

		count, err := s.votes.CountByCandidate(s.ctx, candidate.ID)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("unknown voter is not found", func() {
		election := s.openElection()
		nominee := s.createUser("kim2", id.RoleCandidate, true)
		candidate := s.createCandidacy(nominee, election, candidacymodels.StatusApproved)

		_, err := s.service.CastVote(s.ctx, id.NewUserID(), election.ID, candidate.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("voter not found", dErrors.MessageOf(err))
	})

	s.Run("unknown election is not found", func() {
		voter := s.createUser("bob", id.RoleVoter, true)
		_, err := s.service.CastVote(s.ctx, voter.ID, id.NewElectionID(), id.NewCandidateID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("election not found", dErrors.MessageOf(err))
	})

	s.Run("inactive election rejects all casts", func() {
		voter := s.createUser("carol", id.RoleVoter, true)
		nominee := s.createUser("kim3", id.RoleCandidate, true)
		election := s.createElection(false, s.now.Add(-time.Hour), s.now.Add(time.Hour))
		candidate := s.createCandidacy(nominee, election, candidacymodels.StatusApproved)

		_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, candidate.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal("election is not active", dErrors.MessageOf(err))
	})

	s.Run("active flag does not override a closed window", func() {
		voter := s.createUser("dave", id.RoleVoter, true)
		nominee := s.createUser("kim4", id.RoleCandidate, true)
		election := s.createElection(true, s.now.Add(-48*time.Hour), s.now.Add(-24*time.Hour))
		candidate := s.createCandidacy(nominee, election, candidacymodels.StatusApproved)

		_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, candidate.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal("election is not currently open for voting", dErrors.MessageOf(err))
	})

	s.Run("window has not opened yet", func() {
		voter := s.createUser("erin", id.RoleVoter, true)
		nominee := s.createUser("kim5", id.RoleCandidate, true)
		election := s.createElection(true, s.now.Add(24*time.Hour), s.now.Add(48*time.Hour))
		candidate := s.createCandidacy(nominee, election, candidacymodels.StatusApproved)

		_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, candidate.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("window endpoints are inclusive", func() {
		nominee := s.createUser("kim6", id.RoleCandidate, true)
		election := s.createElection(true, s.now, s.now.Add(time.Hour))
		candidate := s.createCandidacy(nominee, election, candidacymodels.StatusApproved)

		atStart := s.createUser("frank", id.RoleVoter, true)
		_, err := s.service.CastVote(s.ctx, atStart.ID, election.ID, candidate.ID)
		s.NoError(err)

		atEnd := s.createUser("grace", id.RoleVoter, true)
		endCtx := requestcontext.WithTime(context.Background(), election.EndDate)
		_, err = s.service.CastVote(endCtx, atEnd.ID, election.ID, candidate.ID)
		s.NoError(err)
	})

	s.Run("unknown candidate is not found", func() {
		voter := s.createUser("henry", id.RoleVoter, true)
		election := s.openElection()

		_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, id.NewCandidateID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("candidate not found", dErrors.MessageOf(err))
	})

	s.Run("candidate from another election is rejected", func() {
		voter := s.createUser("iris", id.RoleVoter, true)
		nominee := s.createUser("kim7", id.RoleCandidate, true)
		election := s.openElection()
		other := s.openElection()
		candidate := s.createCandidacy(nominee, other, candidacymodels.StatusApproved)

		_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, candidate.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal("candidate is not running in this election", dErrors.MessageOf(err))
	})

	s.Run("pending candidate is rejected", func() {
		voter := s.createUser("judy", id.RoleVoter, true)
		nominee := s.createUser("kim8", id.RoleCandidate, true)
		election := s.openElection()
		candidate := s.createCandidacy(nominee, election, candidacymodels.StatusPending)

		_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, candidate.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal("candidate is not approved", dErrors.MessageOf(err))
	})

	s.Run("second vote in the same election conflicts even for another candidate", func() {
		voter := s.createUser("kate", id.RoleVoter, true)
		nomineeA := s.createUser("kim9", id.RoleCandidate, true)
		nomineeB := s.createUser("kim10", id.RoleCandidate, true)
		election := s.openElection()
		first := s.createCandidacy(nomineeA, election, candidacymodels.StatusApproved)
		second := s.createCandidacy(nomineeB, election, candidacymodels.StatusApproved)

		_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, first.ID)
		s.Require().NoError(err)

		_, err = s.service.CastVote(s.ctx, voter.ID, election.ID, second.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		count, err := s.votes.CountByElection(s.ctx, election.ID)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("one voter may vote in two different elections", func() {
		voter := s.createUser("liam", id.RoleVoter, true)
		nominee := s.createUser("kim11", id.RoleCandidate, true)
		electionA := s.openElection()
		electionB := s.openElection()
		candidateA := s.createCandidacy(nominee, electionA, candidacymodels.StatusApproved)
		candidateB := s.createCandidacy(nominee, electionB, candidacymodels.StatusApproved)

		_, err := s.service.CastVote(s.ctx, voter.ID, electionA.ID, candidateA.ID)
		s.NoError(err)
		_, err = s.service.CastVote(s.ctx, voter.ID, electionB.ID, candidateB.ID)
		s.NoError(err)
	})
}

func (s *VotingServiceSuite) TestConcurrentCast() {
	voter := s.createUser("mallory", id.RoleVoter, true)
	nominee := s.createUser("kim12", id.RoleCandidate, true)
	election := s.openElection()
	candidate := s.createCandidacy(nominee, election, candidacymodels.StatusApproved)

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.service.CastVote(s.ctx, voter.ID, election.ID, candidate.ID)
		}()
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case dErrors.HasCode(err, dErrors.CodeConflict):
			conflicts++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, successes)
	s.Equal(attempts-1, conflicts)

	count, err := s.votes.CountByElection(s.ctx, election.ID)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// =============================================================================
// HasVoted Tests
// =============================================================================

func (s *VotingServiceSuite) TestHasVoted() {
	voter := s.createUser("nina", id.RoleVoter, true)
	nominee := s.createUser("kim13", id.RoleCandidate, true)
	election := s.openElection()
	candidate := s.createCandidacy(nominee, election, candidacymodels.StatusApproved)

	s.Run("false before casting, and stable across reads", func() {
		voted, err := s.service.HasVoted(s.ctx, voter.ID, election.ID)
		s.Require().NoError(err)
		s.False(voted)

		voted, err = s.service.HasVoted(s.ctx, voter.ID, election.ID)
		s.Require().NoError(err)
		s.False(voted)
	})

	s.Run("true after casting", func() {
		_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, candidate.ID)
		s.Require().NoError(err)

		voted, err := s.service.HasVoted(s.ctx, voter.ID, election.ID)
		s.Require().NoError(err)
		s.True(voted)
	})

	s.Run("scoped to the election", func() {
		other := s.openElection()
		voted, err := s.service.HasVoted(s.ctx, voter.ID, other.ID)
		s.Require().NoError(err)
		s.False(voted)
	})
}

// =============================================================================
// Results Tests
// =============================================================================

func (s *VotingServiceSuite) TestResults() {
	s.Run("unknown election is not found", func() {
		_, err := s.service.Results(s.ctx, id.NewElectionID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("counts per candidate and keeps zero-vote candidates", func() {
		election := s.openElection()
		nomineeA := s.createUser("oscar", id.RoleCandidate, true)
		nomineeB := s.createUser("peggy", id.RoleCandidate, true)
		candidateA := s.createCandidacy(nomineeA, election, candidacymodels.StatusApproved)
		candidateB := s.createCandidacy(nomineeB, election, candidacymodels.StatusApproved)

		for _, name := range []string{"v1", "v2", "v3"} {
			voter := s.createUser(name, id.RoleVoter, true)
			_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, candidateA.ID)
			s.Require().NoError(err)
		}

		results, err := s.service.Results(s.ctx, election.ID)
		s.Require().NoError(err)
		s.Equal(3, results.Election.TotalVotes)
		// 2 candidates + 3 voters, all verified.
		s.Equal(5, results.Election.TotalEligibleVoters)

		s.Require().Len(results.Candidates, 2)
		s.Equal(candidateA.ID, results.Candidates[0].ID)
		s.Equal("oscar", results.Candidates[0].Name)
		s.Equal(3, results.Candidates[0].Votes)
		s.Equal(candidateB.ID, results.Candidates[1].ID)
		s.Equal(0, results.Candidates[1].Votes)

		total := 0
		for _, c := range results.Candidates {
			total += c.Votes
		}
		s.Equal(results.Election.TotalVotes, total)
	})

	s.Run("pending and rejected candidates never appear", func() {
		election := s.openElection()
		approved := s.createUser("quinn", id.RoleCandidate, true)
		pending := s.createUser("rita", id.RoleCandidate, true)
		candidate := s.createCandidacy(approved, election, candidacymodels.StatusApproved)
		s.createCandidacy(pending, election, candidacymodels.StatusPending)

		results, err := s.service.Results(s.ctx, election.ID)
		s.Require().NoError(err)
		s.Require().Len(results.Candidates, 1)
		s.Equal(candidate.ID, results.Candidates[0].ID)
	})

	s.Run("always computes the payload regardless of publication state", func() {
		election := s.openElection()
		results, err := s.service.Results(s.ctx, election.ID)
		s.Require().NoError(err)
		s.False(results.Election.IsResultsPublished)
	})
}

func (s *VotingServiceSuite) TestEligibleVoterCount() {
	election := s.openElection()
	s.createUser("sam", id.RoleVoter, false)
	s.createUser("tess", id.RoleAdmin, true)
	s.createUser("uma", id.RoleVoter, true)

	// Only uma counts: sam is unverified and admins are not part of the
	// electorate.
	results, err := s.service.Results(s.ctx, election.ID)
	s.Require().NoError(err)
	s.Equal(1, results.Election.TotalEligibleVoters)
}

// =============================================================================
// History and Ledger Tests
// =============================================================================

func (s *VotingServiceSuite) TestHistory() {
	voter := s.createUser("vera", id.RoleVoter, true)
	nominee := s.createUser("kim14", id.RoleCandidate, true)

	electionA := s.openElection()
	candidateA := s.createCandidacy(nominee, electionA, candidacymodels.StatusApproved)
	_, err := s.service.CastVote(s.ctx, voter.ID, electionA.ID, candidateA.ID)
	s.Require().NoError(err)

	laterCtx := requestcontext.WithTime(context.Background(), s.now.Add(time.Minute))
	electionB := s.openElection()
	candidateB := s.createCandidacy(nominee, electionB, candidacymodels.StatusApproved)
	_, err = s.service.CastVote(laterCtx, voter.ID, electionB.ID, candidateB.ID)
	s.Require().NoError(err)

	records, err := s.service.History(s.ctx, voter.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(electionB.ID, records[0].ElectionID)
	s.Equal(electionA.ID, records[1].ElectionID)
	s.Require().NotNil(records[0].Candidate)
	s.Equal("kim14", records[0].Candidate.Name)
	s.Nil(records[0].Voter)
}

func (s *VotingServiceSuite) TestAllVotes() {
	voter := s.createUser("wendy", id.RoleVoter, true)
	nominee := s.createUser("kim15", id.RoleCandidate, true)
	election := s.openElection()
	candidate := s.createCandidacy(nominee, election, candidacymodels.StatusApproved)
	_, err := s.service.CastVote(s.ctx, voter.ID, election.ID, candidate.ID)
	s.Require().NoError(err)

	records, err := s.service.AllVotes(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Require().NotNil(records[0].Voter)
	s.Equal("wendy", records[0].Voter.Name)
	s.Equal(voter.Email, records[0].Voter.Email)
}
