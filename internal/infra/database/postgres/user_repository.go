package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Hesham-Youssef/StockManager/internal/domain/user"
)

// GetUserByUsername returns an account by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `
		SELECT id, username, password_hash, roles, created_at
		FROM app_user
		WHERE username = $1
	`
	var u user.User
	err := s.db.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Roles, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts the account.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO app_user (username, password_hash, roles, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRow(ctx, query, u.Username, u.PasswordHash, u.Roles, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrUsernameTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}
