package handler

import (
	"context"

	"github.com/shoptrack/backend/internal/model"
	"github.com/shoptrack/backend/internal/service"
)

// UserServiceInterface for handler testing
type UserServiceInterface interface {
	RegisterTelegramUser(ctx context.Context, telegramID int64) (*model.User, error)
	CompleteProfile(ctx context.Context, telegramID int64, name, phone string) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

// ProductServiceInterface for handler testing
type ProductServiceInterface interface {
	Track(ctx context.Context, userID int64, input service.TrackInput) (*model.Product, error)
	List(ctx context.Context, userID int64) ([]model.Product, error)
	Deactivate(ctx context.Context, id, userID int64) error
	History(ctx context.Context, id, userID int64, days int) ([]model.PricePoint, error)
}

// TrackerInterface for handler testing
type TrackerInterface interface {
	CheckNow(ctx context.Context, productID int64) bool
	IsRunning() bool
}
