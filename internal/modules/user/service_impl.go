package user

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

const minPasswordLength = 8

type service struct {
	repo Repository
	cost int
	log  *zap.Logger
}

// NewService creates a new operator service. A cost of zero uses
// bcrypt.DefaultCost.
func NewService(repo Repository, cost int, log *zap.Logger) Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, cost: cost, log: log.Named("user")}
}

func (s *service) RegisterUser(ctx context.Context, email, password, firstName, lastName string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperror.Validation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.Validation("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return nil, apperror.Validation("password must be at least %d characters", minPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperror.Validation("password cannot be hashed: %v", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("operator registered", zap.Stringer("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apperror.Validation("invalid user id %q", id)
	}
	return s.repo.GetUserByID(ctx, uid)
}

func (s *service) EnsureUser(ctx context.Context, email, password string) (*User, bool, error) {
	existing, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, false, err
	}
	created, err := s.RegisterUser(ctx, email, password, "", "")
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
