package memory

import (
	"context"

	"github.com/Hesham-Youssef/StockManager/internal/domain/user"
)

// GetUserByUsername returns an account by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	defer s.rlock()()

	for _, u := range s.data.users {
		if u.Username == username {
			cu := u
			cu.Roles = append([]string(nil), u.Roles...)
			return &cu, nil
		}
	}
	return nil, user.ErrNotFound
}

// CreateUser persists u.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	defer s.lock()()

	for _, existing := range s.data.users {
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
	}

	s.data.nextUserID++
	u.ID = s.data.nextUserID

	rec := *u
	rec.Roles = append([]string(nil), u.Roles...)
	s.data.users[u.ID] = rec
	return nil
}
