package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/needsport-pos/internal/modules/user"
	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

const issuer = "needsport-pos"

var errInvalidCredentials = apperror.Unauthorized("invalid credentials")

type service struct {
	userRepo user.Repository
	key      []byte
	ttl      time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a new auth service signing tokens with secret.
func NewService(userRepo user.Repository, secret string, ttl time.Duration, log *zap.Logger) Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		userRepo: userRepo,
		key:      []byte(secret),
		ttl:      ttl,
		log:      log.Named("auth"),
		now:      time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, user.NormalizeEmail(email))
	if apperror.Is(err, apperror.KindNotFound) {
		s.log.Info("login rejected", zap.String("email", email))
		return "", errInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login rejected", zap.String("email", email))
		return "", errInvalidCredentials
	}

	now := s.now()
	claims := &jwt.StandardClaims{
		Subject:   u.ID.String(),
		Issuer:    issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.log.Info("operator logged in", zap.Stringer("user_id", u.ID))
	return tokenString, nil
}

func (s *service) ParseToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apperror.Unauthorized("invalid or expired token")
	}
	if claims.Issuer != issuer {
		return uuid.Nil, apperror.Unauthorized("invalid or expired token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperror.Unauthorized("invalid or expired token")
	}
	return id, nil
}
