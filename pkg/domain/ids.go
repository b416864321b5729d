// Package domain defines typed identifiers shared across modules.
//
// Typed IDs prevent cross-entity assignment at compile time: a CandidateID
// cannot be passed where an ElectionID is expected. Parsing enforces the
// trust-boundary invariant that IDs are valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "ballotbox/pkg/domain-errors"
)

type (
	// UserID identifies a registered user (voter, candidate, or admin).
	UserID uuid.UUID
	// ElectionID identifies an election.
	ElectionID uuid.UUID
	// CandidateID identifies a candidacy (a user's nomination in one election).
	CandidateID uuid.UUID
	// VoteID identifies a single immutable vote record.
	VoteID uuid.UUID
)

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id ElectionID) String() string  { return uuid.UUID(id).String() }
func (id CandidateID) String() string { return uuid.UUID(id).String() }
func (id VoteID) String() string      { return uuid.UUID(id).String() }

// Defined types do not inherit uuid.UUID's methods, so each ID implements
// encoding.TextMarshaler/TextUnmarshaler itself. JSON encodes IDs as the
// canonical UUID string, never as the raw byte array.

func (id UserID) MarshalText() ([]byte, error)      { return []byte(uuid.UUID(id).String()), nil }
func (id ElectionID) MarshalText() ([]byte, error)  { return []byte(uuid.UUID(id).String()), nil }
func (id CandidateID) MarshalText() ([]byte, error) { return []byte(uuid.UUID(id).String()), nil }
func (id VoteID) MarshalText() ([]byte, error)      { return []byte(uuid.UUID(id).String()), nil }

func (id *UserID) UnmarshalText(data []byte) error {
	parsed, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = UserID(parsed)
	return nil
}

func (id *ElectionID) UnmarshalText(data []byte) error {
	parsed, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = ElectionID(parsed)
	return nil
}

func (id *CandidateID) UnmarshalText(data []byte) error {
	parsed, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = CandidateID(parsed)
	return nil
}

func (id *VoteID) UnmarshalText(data []byte) error {
	parsed, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = VoteID(parsed)
	return nil
}

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ElectionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CandidateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id VoteID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// NewUserID generates a fresh user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewElectionID generates a fresh election ID.
func NewElectionID() ElectionID { return ElectionID(uuid.New()) }

// NewCandidateID generates a fresh candidate ID.
func NewCandidateID() CandidateID { return CandidateID(uuid.New()) }

// NewVoteID generates a fresh vote ID.
func NewVoteID() VoteID { return VoteID(uuid.New()) }

func parse(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", what)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be a valid UUID", what)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", what)
	}
	return parsed, nil
}

// ParseUserID validates and parses a user ID from its string form.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parse(raw, "user id")
	return UserID(parsed), err
}

// ParseElectionID validates and parses an election ID from its string form.
func ParseElectionID(raw string) (ElectionID, error) {
	parsed, err := parse(raw, "election id")
	return ElectionID(parsed), err
}

// ParseCandidateID validates and parses a candidate ID from its string form.
func ParseCandidateID(raw string) (CandidateID, error) {
	parsed, err := parse(raw, "candidate id")
	return CandidateID(parsed), err
}

// ParseVoteID validates and parses a vote ID from its string form.
func ParseVoteID(raw string) (VoteID, error) {
	parsed, err := parse(raw, "vote id")
	return VoteID(parsed), err
}
