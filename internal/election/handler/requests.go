package handler

import (
	"strings"
	"time"

	dErrors "ballotbox/pkg/domain-errors"

	"ballotbox/internal/election/service"
)

// CreateElectionRequest is the HTTP request body for POST /elections.
type CreateElectionRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

func (r *CreateElectionRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "startDate and endDate are required")
	}
	if !r.EndDate.After(r.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end date must be after start date")
	}
	return nil
}

// UpdateElectionRequest is the HTTP request body for PUT /elections/{id}.
// Absent fields are left unchanged.
type UpdateElectionRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

func (r *UpdateElectionRequest) Validate() error {
	if r.Name == nil && r.Description == nil && r.StartDate == nil && r.EndDate == nil {
		return dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	if r.StartDate != nil && r.EndDate != nil && !r.EndDate.After(*r.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end date must be after start date")
	}
	return nil
}

// ToInput converts the request to the service's update input.
func (r *UpdateElectionRequest) ToInput() service.UpdateInput {
	return service.UpdateInput{
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}
