// Package models defines nomination records and their lifecycle states.
package models

import (
	"strings"
	"time"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
)

// Status is the approval state of a nomination.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Terminal reports whether the status permits no further transitions.
// Approved and rejected nominations stay that way.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Candidacy is a user's nomination for one election. At most one exists per
// (user, election) pair; only approved candidacies are votable.
type Candidacy struct {
	ID         id.CandidateID `json:"id"`
	UserID     id.UserID      `json:"userId"`
	ElectionID id.ElectionID  `json:"electionId"`
	Party      string         `json:"party"`
	Status     Status         `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// NewCandidacy validates and builds a pending nomination.
func NewCandidacy(candidateID id.CandidateID, userID id.UserID, electionID id.ElectionID, party string, now time.Time) (*Candidacy, error) {
	party = strings.TrimSpace(party)
	if party == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "party is required")
	}
	return &Candidacy{
		ID:         candidateID,
		UserID:     userID,
		ElectionID: electionID,
		Party:      party,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// UserRef is the user summary embedded in nomination views. Phone is only
// populated on admin-facing lists.
type UserRef struct {
	ID    id.UserID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
}

// ElectionRef is the election summary embedded in nomination views.
type ElectionRef struct {
	ID   id.ElectionID `json:"id"`
	Name string        `json:"name"`
}

// Nomination is a candidacy joined with its user and election summaries and
// the derived vote count. Votes is computed on read, never stored.
type Nomination struct {
	Candidacy
	User     *UserRef     `json:"user,omitempty"`
	Election *ElectionRef `json:"election,omitempty"`
	Votes    int          `json:"votes"`
}
