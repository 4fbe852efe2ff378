package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/shoptrack/backend/internal/repository"
)

type contextKey string

const userIDKey contextKey = "userID"
const telegramIDHeader = "X-Telegram-ID"

// GetUserID extracts the authenticated user's id from the request context.
func GetUserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// IdentityMiddleware resolves the X-Telegram-ID header to a registered user
// and stores the user id in the request context. Requests without a valid
// header or an unknown chat id get 401.
func IdentityMiddleware(users UserServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			telegramID, err := strconv.ParseInt(r.Header.Get(telegramIDHeader), 10, 64)
			if err != nil || telegramID <= 0 {
				respondError(w, http.StatusUnauthorized, "missing or invalid X-Telegram-ID header")
				return
			}

			user, err := users.GetByTelegramID(r.Context(), telegramID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					respondError(w, http.StatusUnauthorized, "unknown user, register first")
					return
				}
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
