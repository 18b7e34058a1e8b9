package user

import (
	"context"
	"time"
)

type Repository interface {
	// CreateUser returns ErrEmailTaken when the email is already stored.
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// EnsureUser inserts the user unless a row with the same id exists.
	EnsureUser(ctx context.Context, user *User) error
}

type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}
