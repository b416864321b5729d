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

	"ballotbox/internal/identity/models"
)

// PostgresUserStore persists users in PostgreSQL. Unique indexes on phone and
// email back the uniqueness guarantees.
type PostgresUserStore struct {
	db *pgxpool.Pool
}

func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const userColumns = `id, name, email, phone, password_hash, role, is_phone_verified, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
		&u.IsPhoneVerified, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO users (id, name, email, phone, password_hash, role, is_phone_verified, is_verified, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`, user.ID, user.Name, user.Email, user.Phone, user.PasswordHash, user.Role,
		user.IsPhoneVerified, user.IsVerified, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user *models.User) error {
	tag, err := s.db.Exec(ctx, `
UPDATE users
SET name=$2, email=$3, phone=$4, password_hash=$5, role=$6,
    is_phone_verified=$7, is_verified=$8, updated_at=$9
WHERE id=$1
`, user.ID, user.Name, user.Email, user.Phone, user.PasswordHash, user.Role,
		user.IsPhoneVerified, user.IsVerified, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID))
}

func (s *PostgresUserStore) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone=$1`, phone))
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (s *PostgresUserStore) Delete(ctx context.Context, userID id.UserID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) List(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (s *PostgresUserStore) ListPendingApproval(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+userColumns+`
FROM users
WHERE is_phone_verified AND NOT is_verified
ORDER BY created_at ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (s *PostgresUserStore) CountEligibleVoters(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
SELECT COUNT(*) FROM users WHERE role IN ('VOTER','CANDIDATE') AND is_verified
`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count eligible voters: %w", err)
	}
	return count, nil
}

func (s *PostgresUserStore) CountByRole(ctx context.Context, role id.Role) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role=$1`, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return count, nil
}

func (s *PostgresUserStore) CountPendingApproval(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
SELECT COUNT(*) FROM users WHERE is_phone_verified AND NOT is_verified
`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending users: %w", err)
	}
	return count, nil
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
