package handler

import (
	id "ballotbox/pkg/domain"
)

// CastVoteRequest is the HTTP request body for POST /votes/cast.
type CastVoteRequest struct {
	ElectionID  string `json:"electionId"`
	CandidateID string `json:"candidateId"`

	electionID  id.ElectionID
	candidateID id.CandidateID
}

func (r *CastVoteRequest) Validate() error {
	electionID, err := id.ParseElectionID(r.ElectionID)
	if err != nil {
		return err
	}
	candidateID, err := id.ParseCandidateID(r.CandidateID)
	if err != nil {
		return err
	}
	r.electionID = electionID
	r.candidateID = candidateID
	return nil
}

func (r *CastVoteRequest) ParsedElectionID() id.ElectionID   { return r.electionID }
func (r *CastVoteRequest) ParsedCandidateID() id.CandidateID { return r.candidateID }
