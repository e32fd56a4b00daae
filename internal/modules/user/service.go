package user

import "context"

// Service defines the interface for operator-related business logic.
type Service interface {
	RegisterUser(ctx context.Context, email, password, firstName, lastName string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	// EnsureUser registers the operator unless one with the same email exists.
	EnsureUser(ctx context.Context, email, password string) (*User, bool, error)
}
