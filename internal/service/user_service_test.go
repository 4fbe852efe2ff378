package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoptrack/backend/internal/apperror"
	"github.com/shoptrack/backend/internal/model"
)

func TestUserService_RegisterTelegramUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := new(MockUserRepository)
	s := NewUserService(users)

	users.On("GetOrCreateByTelegramID", ctx, int64(99001)).
		Return(&model.User{ID: 1, TelegramID: 99001}, nil)

	user, err := s.RegisterTelegramUser(ctx, 99001)

	require.NoError(t, err)
	assert.Equal(t, int64(99001), user.TelegramID)
	users.AssertExpectations(t)
}

func TestUserService_CompleteProfile(t *testing.T) {
	t.Parallel()

	t.Run("stores trimmed values", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		users := new(MockUserRepository)
		s := NewUserService(users)

		users.On("UpdateProfile", ctx, int64(99001), "Анна", "+79161234567").Return(nil)

		err := s.CompleteProfile(ctx, 99001, "  Анна  ", " +79161234567 ")

		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		s := NewUserService(new(MockUserRepository))

		err := s.CompleteProfile(context.Background(), 99001, "   ", "+79161234567")

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrValidation))
	})

	t.Run("rejects bad phone", func(t *testing.T) {
		t.Parallel()

		s := NewUserService(new(MockUserRepository))

		for _, phone := range []string{"", "abc", "123", "+7916123456789012345"} {
			err := s.CompleteProfile(context.Background(), 99001, "Анна", phone)
			assert.Error(t, err, "phone %q", phone)
		}
	})
}

func TestValidPhone(t *testing.T) {
	t.Parallel()

	assert.True(t, validPhone("+79161234567"))
	assert.True(t, validPhone("79161234567"))
	assert.False(t, validPhone("+7916"))
	assert.False(t, validPhone("+7916123456a"))
}
