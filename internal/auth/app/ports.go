package app

import "context"

type User struct {
	ID    string
	Email string
}

type UserRepo interface {
	// Create stores a new user with their password hash. A duplicate
	// email returns ErrEmailTaken.
	Create(ctx context.Context, user User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (User, string, error)
}
