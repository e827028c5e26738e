package user

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no live user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email is already taken by a live user.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrInvalidCredentials is returned when login email/password verification fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Repository is the persistence contract for the user directory. All
// lookups are soft-delete aware: records with deleted = true behave as
// if they do not exist.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByPublicID(ctx context.Context, publicID string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SoftDelete(ctx context.Context, publicID string) error
}
