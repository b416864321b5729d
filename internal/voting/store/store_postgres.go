package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"

	"ballotbox/internal/voting/models"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// PostgresVoteStore persists the ledger in PostgreSQL. The unique index on
// (voter_id, election_id) is the authoritative duplicate-vote guard; the
// second of two concurrent casts gets the constraint violation.
type PostgresVoteStore struct {
	db *pgxpool.Pool
}

func NewPostgresVoteStore(db *pgxpool.Pool) *PostgresVoteStore {
	return &PostgresVoteStore{db: db}
}

const voteColumns = `id, voter_id, election_id, candidate_id, created_at`

func scanVote(row pgx.Row) (*models.Vote, error) {
	var v models.Vote
	err := row.Scan(&v.ID, &v.VoterID, &v.ElectionID, &v.CandidateID, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan vote: %w", err)
	}
	return &v, nil
}

func (s *PostgresVoteStore) Create(ctx context.Context, vote *models.Vote) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO votes (id, voter_id, election_id, candidate_id, created_at)
VALUES ($1,$2,$3,$4,$5)
`, vote.ID, vote.VoterID, vote.ElectionID, vote.CandidateID, vote.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create vote: %w", err)
	}
	return nil
}

func (s *PostgresVoteStore) FindByVoterAndElection(ctx context.Context, voterID id.UserID, electionID id.ElectionID) (*models.Vote, error) {
	return scanVote(s.db.QueryRow(ctx, `
SELECT `+voteColumns+` FROM votes WHERE voter_id=$1 AND election_id=$2
`, voterID, electionID))
}

func (s *PostgresVoteStore) ListByVoter(ctx context.Context, voterID id.UserID) ([]*models.Vote, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+voteColumns+` FROM votes WHERE voter_id=$1 ORDER BY created_at DESC
`, voterID)
	if err != nil {
		return nil, fmt.Errorf("list votes by voter: %w", err)
	}
	defer rows.Close()
	return collectVotes(rows)
}

func (s *PostgresVoteStore) ListAll(ctx context.Context) ([]*models.Vote, error) {
	rows, err := s.db.Query(ctx, `SELECT `+voteColumns+` FROM votes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()
	return collectVotes(rows)
}

func (s *PostgresVoteStore) CountByElection(ctx context.Context, electionID id.ElectionID) (int, error) {
	return s.countWhere(ctx, `election_id=$1`, electionID)
}

func (s *PostgresVoteStore) CountByCandidate(ctx context.Context, candidateID id.CandidateID) (int, error) {
	return s.countWhere(ctx, `candidate_id=$1`, candidateID)
}

func (s *PostgresVoteStore) CountByVoter(ctx context.Context, voterID id.UserID) (int, error) {
	return s.countWhere(ctx, `voter_id=$1`, voterID)
}

func (s *PostgresVoteStore) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM votes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return count, nil
}

func (s *PostgresVoteStore) countWhere(ctx context.Context, where string, arg any) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM votes WHERE `+where, arg).Scan(&count); err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return count, nil
}

func collectVotes(rows pgx.Rows) ([]*models.Vote, error) {
	var votes []*models.Vote
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}
