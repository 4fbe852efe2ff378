package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/shoptrack/backend/internal/apperror"
	"github.com/shoptrack/backend/internal/model"
	"github.com/shoptrack/backend/internal/repository"
)

// UserService handles registration and profile completion for bot users.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// RegisterTelegramUser ensures a user row exists for the chat. Safe to call
// on every interaction.
func (s *UserService) RegisterTelegramUser(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.users.GetOrCreateByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("registering telegram user %d: %w", telegramID, err)
	}
	return user, nil
}

// CompleteProfile stores the user's name and phone, finishing registration.
func (s *UserService) CompleteProfile(ctx context.Context, telegramID int64, name, phone string) error {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	if name == "" {
		return apperror.ValidationError("name", "name is required")
	}
	if !validPhone(phone) {
		return apperror.ValidationError("phone", "invalid phone number")
	}

	if err := s.users.UpdateProfile(ctx, telegramID, name, phone); err != nil {
		return fmt.Errorf("completing profile for %d: %w", telegramID, err)
	}
	return nil
}

// GetByTelegramID retrieves a user by chat id.
// Returns repository.ErrUserNotFound if no user is registered for the chat.
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

// validPhone accepts an optional leading + followed by 10 to 15 digits.
func validPhone(phone string) bool {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
