package domain

import dErrors "ballotbox/pkg/domain-errors"

// Role is a user's role in the system.
type Role string

const (
	RoleVoter     Role = "VOTER"
	RoleCandidate Role = "CANDIDATE"
	RoleAdmin     Role = "ADMIN"
)

// ParseRole validates a role string at a trust boundary.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleVoter, RoleCandidate, RoleAdmin:
		return Role(raw), nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", raw)
	}
}

// ParseRegistrationRole validates a role supplied at self-registration.
// ADMIN accounts are seeded out of band, never self-registered.
func ParseRegistrationRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleVoter, RoleCandidate:
		return Role(raw), nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "role must be VOTER or CANDIDATE")
	}
}
