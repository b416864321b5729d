package models

import (
	"strings"
	"time"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
)

// Election is a named voting window.
//
// Invariants:
//   - EndDate is strictly after StartDate.
//   - IsActive and the date window are independent gates: both must hold for
//     a vote to be accepted. The flag is admin-toggled and may lag the window
//     (active flag true after the window lapsed, or vice versa); neither
//     condition is collapsed into the other.
//   - IsResultsPublished gates result visibility for non-admins only.
//   - An election with recorded votes cannot be deleted.
type Election struct {
	ID                 id.ElectionID `json:"id"`
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	StartDate          time.Time     `json:"startDate"`
	EndDate            time.Time     `json:"endDate"`
	IsActive           bool          `json:"isActive"`
	IsResultsPublished bool          `json:"isResultsPublished"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// WindowContains reports whether now falls inside the voting window,
// inclusive of both endpoints.
func (e *Election) WindowContains(now time.Time) bool {
	return !now.Before(e.StartDate) && !now.After(e.EndDate)
}

// NewElection constructs an election. New elections start inactive with
// results unpublished; an admin flips the toggles explicitly.
func NewElection(electionID id.ElectionID, name, description string, start, end time.Time, now time.Time) (*Election, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "election name is required")
	}
	if !end.After(start) {
		return nil, dErrors.New(dErrors.CodeValidation, "end date must be after start date")
	}
	return &Election{
		ID:          electionID,
		Name:        name,
		Description: strings.TrimSpace(description),
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
