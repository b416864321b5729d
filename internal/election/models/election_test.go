package models

import (
	"testing"
	"time"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
)

func TestWindowContainsIsInclusive(t *testing.T) {
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	election := &Election{StartDate: start, EndDate: end}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before start", start.Add(-time.Second), false},
		{"at start", start, true},
		{"mid window", start.Add(24 * time.Hour), true},
		{"at end", end, true},
		{"after end", end.Add(time.Second), false},
	}
	for _, tc := range cases {
		if got := election.WindowContains(tc.at); got != tc.want {
			t.Errorf("%s: WindowContains(%s) = %v, want %v", tc.name, tc.at, got, tc.want)
		}
	}
}

func TestNewElection(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	election, err := NewElection(id.NewElectionID(), "  Board Vote  ", " annual ", now, now.Add(time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if election.Name != "Board Vote" || election.Description != "annual" {
		t.Fatalf("expected trimmed fields, got %q / %q", election.Name, election.Description)
	}
	if election.IsActive || election.IsResultsPublished {
		t.Fatalf("expected new election to start inactive and unpublished")
	}

	if _, err := NewElection(id.NewElectionID(), "", "", now, now.Add(time.Hour), now); !dErrors.HasCode(err, dErrors.CodeValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := NewElection(id.NewElectionID(), "x", "", now, now, now); !dErrors.HasCode(err, dErrors.CodeValidation) {
		t.Fatalf("expected validation error for empty window, got %v", err)
	}
}
