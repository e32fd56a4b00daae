package auth

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login checks the operator's credentials and returns a signed token.
	Login(ctx context.Context, email, password string) (string, error)
	// ParseToken validates a token and returns the operator id it was issued to.
	ParseToken(token string) (uuid.UUID, error)
}
