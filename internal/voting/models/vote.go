// Package models defines the vote ledger record and the read-side views
// derived from it.
package models

import (
	"time"

	id "ballotbox/pkg/domain"
)

// Vote is one ledger entry: voter V chose candidate C in election E. At most
// one exists per (voter, election), and a recorded vote is never updated or
// deleted through any exposed operation.
type Vote struct {
	ID          id.VoteID      `json:"id"`
	VoterID     id.UserID      `json:"voterId"`
	ElectionID  id.ElectionID  `json:"electionId"`
	CandidateID id.CandidateID `json:"candidateId"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// VoterSummary identifies the voter on admin-facing vote listings.
type VoterSummary struct {
	ID    id.UserID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// CandidateSummary is the candidate as shown on receipts and history. Name
// is the nominated user's name, not a separate candidate field.
type CandidateSummary struct {
	ID    id.CandidateID `json:"id"`
	Name  string         `json:"name"`
	Party string         `json:"party"`
}

// ElectionSummary is the election as shown on receipts and history.
type ElectionSummary struct {
	ID      id.ElectionID `json:"id"`
	Name    string        `json:"name"`
	EndDate *time.Time    `json:"endDate,omitempty"`
}

// VoteRecord is a vote joined with its display summaries. Voter is only
// populated on the admin listing.
type VoteRecord struct {
	Vote
	Voter     *VoterSummary     `json:"voter,omitempty"`
	Candidate *CandidateSummary `json:"candidate,omitempty"`
	Election  *ElectionSummary  `json:"election,omitempty"`
}

// ResultsElection carries the election-level aggregates of a results payload.
type ResultsElection struct {
	ID                  id.ElectionID `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	IsResultsPublished  bool          `json:"isResultsPublished"`
	TotalVotes          int           `json:"totalVotes"`
	TotalEligibleVoters int           `json:"totalEligibleVoters"`
}

// CandidateResult is one approved candidate's tally. Votes is counted from
// the ledger on every read; there is no stored counter to drift.
type CandidateResult struct {
	ID    id.CandidateID `json:"id"`
	Name  string         `json:"name"`
	Party string         `json:"party"`
	Votes int            `json:"votes"`
}

// ElectionResults is the full aggregation for one election. Candidates are
// ordered by votes descending; ties keep their retrieval order.
type ElectionResults struct {
	Election   ResultsElection   `json:"election"`
	Candidates []CandidateResult `json:"candidates"`
}
