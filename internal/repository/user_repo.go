// Package repository holds the SQL data access layer.
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// GetByUsername returns the user and their password hash, or (nil, "", nil)
// when no such user exists.
func (r *UserRepository) GetByUsername(username string) (*models.User, string, error) {
	query := `
		SELECT id, username, password_hash, COALESCE(email, ''), created_at, last_login
		FROM users
		WHERE username = ?
	`

	var user models.User
	var hash string
	var lastLogin sql.NullTime

	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &hash, &user.Email, &user.CreatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("username", username), zap.Error(err))
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, hash, nil
}

// UpdateLastLogin stamps the user's last login time.
func (r *UserRepository) UpdateLastLogin(userID int64) error {
	_, err := r.db.Exec("UPDATE users SET last_login = ? WHERE id = ?", time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
