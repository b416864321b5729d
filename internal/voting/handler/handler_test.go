package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/testutil"

	candidacymodels "ballotbox/internal/candidacy/models"
	candidacystore "ballotbox/internal/candidacy/store"
	electionmodels "ballotbox/internal/election/models"
	electionstore "ballotbox/internal/election/store"
	identitymodels "ballotbox/internal/identity/models"
	identitystore "ballotbox/internal/identity/store"
	"ballotbox/internal/voting/metrics"
	"ballotbox/internal/voting/service"
	votingstore "ballotbox/internal/voting/store"
)

var testMetrics = metrics.New()

type votingEnv struct {
	router      http.Handler
	users       *identitystore.InMemoryUserStore
	elections   *electionstore.InMemoryElectionStore
	candidacies *candidacystore.InMemoryCandidacyStore
	votes       *votingstore.InMemoryVoteStore

	voter     *identitymodels.User
	admin     *identitymodels.User
	election  *electionmodels.Election
	candidate *candidacymodels.Candidacy
}

func newVotingEnv(t *testing.T) *votingEnv {
	t.Helper()
	env := &votingEnv{
		users:       identitystore.NewInMemoryUserStore(),
		elections:   electionstore.NewInMemoryElectionStore(),
		candidacies: candidacystore.NewInMemoryCandidacyStore(),
		votes:       votingstore.NewInMemoryVoteStore(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(env.votes, env.users, env.elections, env.candidacies, testMetrics, logger)
	h := New(svc, logger)

	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	env.router = r

	now := time.Now().UTC()
	env.voter = &identitymodels.User{
		ID: id.NewUserID(), Name: "Asha", Email: "asha@example.com", Phone: "5550100",
		PasswordHash: "x", Role: id.RoleVoter, IsPhoneVerified: true, IsVerified: true,
		CreatedAt: now, UpdatedAt: now,
	}
	env.admin = &identitymodels.User{
		ID: id.NewUserID(), Name: "Root", Email: "root@example.com", Phone: "5550101",
		PasswordHash: "x", Role: id.RoleAdmin, IsPhoneVerified: true, IsVerified: true,
		CreatedAt: now, UpdatedAt: now,
	}
	nominee := &identitymodels.User{
		ID: id.NewUserID(), Name: "Kiran", Email: "kiran@example.com", Phone: "5550102",
		PasswordHash: "x", Role: id.RoleCandidate, IsPhoneVerified: true, IsVerified: true,
		CreatedAt: now, UpdatedAt: now,
	}
	for _, u := range []*identitymodels.User{env.voter, env.admin, nominee} {
		if err := env.users.Create(context.Background(), u); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	env.election = &electionmodels.Election{
		ID: id.NewElectionID(), Name: "City Council",
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := env.elections.Create(context.Background(), env.election); err != nil {
		t.Fatalf("failed to seed election: %v", err)
	}

	env.candidate = &candidacymodels.Candidacy{
		ID: id.NewCandidateID(), UserID: nominee.ID, ElectionID: env.election.ID,
		Party: "Greens", Status: candidacymodels.StatusApproved,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := env.candidacies.Create(context.Background(), env.candidate); err != nil {
		t.Fatalf("failed to seed candidacy: %v", err)
	}
	return env
}

func TestCastVoteEndpoint(t *testing.T) {
	env := newVotingEnv(t)

	body := map[string]string{
		"electionId":  env.election.ID.String(),
		"candidateId": env.candidate.ID.String(),
	}
	req := testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPost, "/votes/cast", body), env.voter.ID, env.voter.Role)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 casting vote, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message string `json:"message"`
		Vote    struct {
			VoterID string `json:"voterId"`
		} `json:"vote"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Message != "Vote cast successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Vote.VoterID != env.voter.ID.String() {
		t.Fatalf("expected receipt for voter %s, got %s", env.voter.ID, resp.Vote.VoterID)
	}

	// Same voter again: the slot is taken.
	req = testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPost, "/votes/cast", body), env.voter.ID, env.voter.Role)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate vote, got %d", rec.Code)
	}
}

func TestHasVotedEndpoint(t *testing.T) {
	env := newVotingEnv(t)
	target := "/votes/has-voted/" + env.election.ID.String()

	req := testutil.WithAuth(httptest.NewRequest(http.MethodGet, target, nil), env.voter.ID, env.voter.Role)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		HasVoted bool `json:"hasVoted"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.HasVoted {
		t.Fatalf("expected hasVoted=false before casting")
	}

	body := map[string]string{
		"electionId":  env.election.ID.String(),
		"candidateId": env.candidate.ID.String(),
	}
	castReq := testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPost, "/votes/cast", body), env.voter.ID, env.voter.Role)
	castRec := httptest.NewRecorder()
	env.router.ServeHTTP(castRec, castReq)
	if castRec.Code != http.StatusCreated {
		t.Fatalf("expected 201 casting vote, got %d", castRec.Code)
	}

	req = testutil.WithAuth(httptest.NewRequest(http.MethodGet, target, nil), env.voter.ID, env.voter.Role)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	testutil.DecodeJSON(t, rec, &resp)
	if !resp.HasVoted {
		t.Fatalf("expected hasVoted=true after casting")
	}
}

func TestResultsPublicationGate(t *testing.T) {
	env := newVotingEnv(t)
	target := "/votes/results/" + env.election.ID.String()

	// Unpublished: non-admins are refused.
	req := testutil.WithAuth(httptest.NewRequest(http.MethodGet, target, nil), env.voter.ID, env.voter.Role)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unpublished results, got %d", rec.Code)
	}
	var errResp struct {
		Error string `json:"error"`
	}
	testutil.DecodeJSON(t, rec, &errResp)
	if errResp.Error != "forbidden" {
		t.Fatalf("expected forbidden error code, got %q", errResp.Error)
	}

	// Unpublished: admins always see the full payload.
	req = testutil.WithAuth(httptest.NewRequest(http.MethodGet, target, nil), env.admin.ID, env.admin.Role)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
	var results struct {
		Election struct {
			IsResultsPublished bool `json:"isResultsPublished"`
		} `json:"election"`
		Candidates []struct {
			Votes int `json:"votes"`
		} `json:"candidates"`
	}
	testutil.DecodeJSON(t, rec, &results)
	if results.Election.IsResultsPublished {
		t.Fatalf("expected isResultsPublished=false in admin view")
	}
	if len(results.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(results.Candidates))
	}

	// Published: everyone sees results.
	env.election.IsResultsPublished = true
	if err := env.elections.Update(context.Background(), env.election); err != nil {
		t.Fatalf("failed to publish results: %v", err)
	}
	req = testutil.WithAuth(httptest.NewRequest(http.MethodGet, target, nil), env.voter.ID, env.voter.Role)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after publication, got %d", rec.Code)
	}
}
