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

	"ballotbox/internal/candidacy/models"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// PostgresCandidacyStore persists nominations in PostgreSQL. The unique index
// on (user_id, election_id) is the duplicate-nomination guard.
type PostgresCandidacyStore struct {
	db *pgxpool.Pool
}

func NewPostgresCandidacyStore(db *pgxpool.Pool) *PostgresCandidacyStore {
	return &PostgresCandidacyStore{db: db}
}

const candidacyColumns = `id, user_id, election_id, party, status, created_at, updated_at`

func scanCandidacy(row pgx.Row) (*models.Candidacy, error) {
	var c models.Candidacy
	err := row.Scan(&c.ID, &c.UserID, &c.ElectionID, &c.Party, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan candidacy: %w", err)
	}
	return &c, nil
}

func (s *PostgresCandidacyStore) Create(ctx context.Context, candidacy *models.Candidacy) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO candidates (id, user_id, election_id, party, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, candidacy.ID, candidacy.UserID, candidacy.ElectionID, candidacy.Party,
		candidacy.Status, candidacy.CreatedAt, candidacy.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create candidacy: %w", err)
	}
	return nil
}

func (s *PostgresCandidacyStore) Update(ctx context.Context, candidacy *models.Candidacy) error {
	tag, err := s.db.Exec(ctx, `
UPDATE candidates SET party=$2, status=$3, updated_at=$4 WHERE id=$1
`, candidacy.ID, candidacy.Party, candidacy.Status, candidacy.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update candidacy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresCandidacyStore) FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidacy, error) {
	return scanCandidacy(s.db.QueryRow(ctx, `SELECT `+candidacyColumns+` FROM candidates WHERE id=$1`, candidateID))
}

func (s *PostgresCandidacyStore) Delete(ctx context.Context, candidateID id.CandidateID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM candidates WHERE id=$1`, candidateID)
	if err != nil {
		return fmt.Errorf("delete candidacy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresCandidacyStore) List(ctx context.Context) ([]*models.Candidacy, error) {
	rows, err := s.db.Query(ctx, `SELECT `+candidacyColumns+` FROM candidates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list candidacies: %w", err)
	}
	defer rows.Close()
	return collectCandidacies(rows)
}

func (s *PostgresCandidacyStore) ListByElection(ctx context.Context, electionID id.ElectionID) ([]*models.Candidacy, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+candidacyColumns+` FROM candidates WHERE election_id=$1 ORDER BY created_at DESC
`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list candidacies by election: %w", err)
	}
	defer rows.Close()
	return collectCandidacies(rows)
}

func (s *PostgresCandidacyStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Candidacy, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+candidacyColumns+` FROM candidates WHERE user_id=$1 ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list candidacies by user: %w", err)
	}
	defer rows.Close()
	return collectCandidacies(rows)
}

func (s *PostgresCandidacyStore) ListPending(ctx context.Context) ([]*models.Candidacy, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+candidacyColumns+` FROM candidates WHERE status='PENDING' ORDER BY created_at ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list pending candidacies: %w", err)
	}
	defer rows.Close()
	return collectCandidacies(rows)
}

func (s *PostgresCandidacyStore) CountApproved(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidates WHERE status='APPROVED'`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count approved candidacies: %w", err)
	}
	return count, nil
}

func collectCandidacies(rows pgx.Rows) ([]*models.Candidacy, error) {
	var candidates []*models.Candidacy
	for rows.Next() {
		candidacy, err := scanCandidacy(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidacy)
	}
	return candidates, rows.Err()
}
