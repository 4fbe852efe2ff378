package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a person registered through the bot front end. TelegramID is the
// external messaging-platform identity; Name and Phone stay nil until the
// registration dialogue completes.
type User struct {
	ID         int64     `db:"id" json:"id"`
	TelegramID int64     `db:"telegram_id" json:"telegramId"`
	Name       *string   `db:"name" json:"name,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// Registered reports whether the user finished the registration dialogue.
func (u *User) Registered() bool {
	return u.Name != nil && *u.Name != ""
}

// Product is a tracked marketplace item. CurrentPrice is authoritative;
// PreviousPrice holds the value CurrentPrice had before the most recent
// successful resolution and stays nil until the first price update.
// Products are never deleted, only deactivated.
type Product struct {
	ID             int64            `db:"id" json:"id"`
	UserID         int64            `db:"user_id" json:"userId"`
	Name           string           `db:"name" json:"name"`
	URL            string           `db:"url" json:"url"`
	CurrentPrice   decimal.Decimal  `db:"current_price" json:"currentPrice"`
	PreviousPrice  *decimal.Decimal `db:"previous_price" json:"previousPrice,omitempty"`
	PriceThreshold decimal.Decimal  `db:"price_threshold" json:"priceThreshold"`
	IsActive       bool             `db:"is_active" json:"isActive"`
	CreatedAt      time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updatedAt"`
}

// PricePoint is a single observed price, kept for history.
type PricePoint struct {
	ID         int64           `db:"id" json:"id"`
	ProductID  int64           `db:"product_id" json:"productId"`
	Price      decimal.Decimal `db:"price" json:"price"`
	RecordedAt time.Time       `db:"recorded_at" json:"recordedAt"`
}

// PriceChangeEvent describes a persisted price move that met a product's
// notification threshold.
type PriceChangeEvent struct {
	Product  Product
	OldPrice decimal.Decimal
	NewPrice decimal.Decimal
	Delta    decimal.Decimal // Positive = increase, negative = decrease
}

// Increased reports the direction of the move.
func (e *PriceChangeEvent) Increased() bool {
	return e.Delta.IsPositive()
}
