package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"

	"ballotbox/internal/election/models"
)

// PostgresElectionStore persists elections in PostgreSQL.
type PostgresElectionStore struct {
	db *pgxpool.Pool
}

func NewPostgresElectionStore(db *pgxpool.Pool) *PostgresElectionStore {
	return &PostgresElectionStore{db: db}
}

const electionColumns = `id, name, description, start_date, end_date, is_active, is_results_published, created_at, updated_at`

func scanElection(row pgx.Row) (*models.Election, error) {
	var e models.Election
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.StartDate, &e.EndDate,
		&e.IsActive, &e.IsResultsPublished, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan election: %w", err)
	}
	return &e, nil
}

func (s *PostgresElectionStore) Create(ctx context.Context, election *models.Election) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO elections (id, name, description, start_date, end_date, is_active, is_results_published, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, election.ID, election.Name, election.Description, election.StartDate, election.EndDate,
		election.IsActive, election.IsResultsPublished, election.CreatedAt, election.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create election: %w", err)
	}
	return nil
}

func (s *PostgresElectionStore) Update(ctx context.Context, election *models.Election) error {
	tag, err := s.db.Exec(ctx, `
UPDATE elections
SET name=$2, description=$3, start_date=$4, end_date=$5,
    is_active=$6, is_results_published=$7, updated_at=$8
WHERE id=$1
`, election.ID, election.Name, election.Description, election.StartDate, election.EndDate,
		election.IsActive, election.IsResultsPublished, election.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update election: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresElectionStore) FindByID(ctx context.Context, electionID id.ElectionID) (*models.Election, error) {
	return scanElection(s.db.QueryRow(ctx, `SELECT `+electionColumns+` FROM elections WHERE id=$1`, electionID))
}

func (s *PostgresElectionStore) Delete(ctx context.Context, electionID id.ElectionID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM elections WHERE id=$1`, electionID)
	if err != nil {
		return fmt.Errorf("delete election: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresElectionStore) List(ctx context.Context) ([]*models.Election, error) {
	rows, err := s.db.Query(ctx, `SELECT `+electionColumns+` FROM elections ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	defer rows.Close()
	return collectElections(rows)
}

func (s *PostgresElectionStore) ListActive(ctx context.Context) ([]*models.Election, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+electionColumns+` FROM elections WHERE is_active ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list active elections: %w", err)
	}
	defer rows.Close()
	return collectElections(rows)
}

func (s *PostgresElectionStore) CountActive(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM elections WHERE is_active`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active elections: %w", err)
	}
	return count, nil
}

func collectElections(rows pgx.Rows) ([]*models.Election, error) {
	var elections []*models.Election
	for rows.Next() {
		election, err := scanElection(rows)
		if err != nil {
			return nil, err
		}
		elections = append(elections, election)
	}
	return elections, rows.Err()
}
