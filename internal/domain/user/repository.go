package user

import "context"

// Repository defines the interface for account data access.
type Repository interface {
	// GetUserByUsername returns an account by username.
	// Fails with ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// CreateUser persists u, assigning ID.
	// Fails with ErrUsernameTaken on a username collision.
	CreateUser(ctx context.Context, u *User) error
}
