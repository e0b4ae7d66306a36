package users

import (
	"context"
)

// Repository describes persistence operations for user accounts.
type Repository interface {
	// Create inserts a new user and returns it with the assigned ID.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByUsername returns the user with the given username, or
	// common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID returns the user with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*User, error)

	// List returns all users, optionally restricted to one role.
	List(ctx context.Context, role Role) ([]User, error)

	// UpdatePassword replaces the stored credential for the given user id.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// UpdatePasswordByUsername replaces the stored credential by username.
	UpdatePasswordByUsername(ctx context.Context, username string, passwordHash string) error

	// Delete removes a user. Unknown ids return common.ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
