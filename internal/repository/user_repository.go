// Package repository provides data access on top of sqlx.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shoptrack/backend/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository defines data access for bot users
type UserRepository interface {
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, telegramID int64, name, phone string) error
}

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE telegram_id = $1`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

// GetOrCreateByTelegramID returns the user for a platform identity, creating
// an empty profile on first contact.
func (r *userRepository) GetOrCreateByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	existing, err := r.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	var user model.User
	query := `
		INSERT INTO users (telegram_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING *`
	if err := r.db.GetContext(ctx, &user, query, telegramID); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, telegramID int64, name, phone string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = $2, phone = $3, updated_at = NOW()
		WHERE telegram_id = $1
	`, telegramID, name, phone)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
