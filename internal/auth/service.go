// Package auth verifies user credentials and issues bearer tokens.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/models"
	"github.com/yfgao/invoice-extract/internal/repository"
)

// Service authenticates users and manages session tokens.
type Service struct {
	users    *repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewService creates a new auth service. tokenTTL is the bearer token
// validity window (24h in the reference deployment).
func NewService(users *repository.UserRepository, secret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Claims is the bearer token payload.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// HashPassword returns the hex-encoded SHA-256 digest of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyUser checks the credentials and updates the user's last login on
// success. Returns nil and an error when the user is unknown or the
// password does not match.
func (s *Service) VerifyUser(username, password string) (*models.User, error) {
	user, hash, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || HashPassword(password) != hash {
		return nil, fmt.Errorf("invalid username or password")
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		s.logger.Warn("Failed to update last login",
			zap.String("username", username),
			zap.Error(err))
	}

	return user, nil
}

// GenerateToken issues an HS256 bearer token for the user.
func (s *Service) GenerateToken(userID int64, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a bearer token. Expired or otherwise
// invalid tokens return an error.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
