package user

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("Username taken")

	// ErrInvalidCredentials covers both unknown username and wrong password
	// so login failures do not leak which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
