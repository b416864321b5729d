package handler

import (
	"strings"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
)

// NominateRequest is the HTTP request body for POST /candidates/nominate.
type NominateRequest struct {
	ElectionID string `json:"electionId"`
	Party      string `json:"party"`

	electionID id.ElectionID
}

func (r *NominateRequest) Validate() error {
	electionID, err := id.ParseElectionID(r.ElectionID)
	if err != nil {
		return err
	}
	r.electionID = electionID
	if strings.TrimSpace(r.Party) == "" {
		return dErrors.New(dErrors.CodeValidation, "party is required")
	}
	return nil
}

func (r *NominateRequest) ParsedElectionID() id.ElectionID { return r.electionID }
