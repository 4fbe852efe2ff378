// Package notify turns persisted price changes into user-facing messages.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shoptrack/backend/internal/logger"
	"github.com/shoptrack/backend/internal/model"
	"github.com/shoptrack/backend/internal/repository"
	"github.com/shoptrack/backend/pkg/money"
)

// Deliverer is the external capability that carries a text to a recipient.
// Delivery is fire-and-forget from the notifier's point of view.
type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, text string) error
}

// Notifier formats price-change events and hands them to the deliverer.
// Every failure path is logged and swallowed: a lost notification never
// rolls back the price update that triggered it.
type Notifier struct {
	users     repository.UserRepository
	deliverer Deliverer
}

// New creates a Notifier
func New(users repository.UserRepository, deliverer Deliverer) *Notifier {
	return &Notifier{
		users:     users,
		deliverer: deliverer,
	}
}

// NotifyPriceChange sends a price alert to the product's owner. If the owner
// no longer exists the call is a silent no-op.
func (n *Notifier) NotifyPriceChange(ctx context.Context, product *model.Product, oldPrice, newPrice decimal.Decimal) {
	log := logger.FromContext(ctx)

	user, err := n.users.GetByID(ctx, product.UserID)
	if err != nil {
		// User deleted concurrently is a normal race, not an error
		if !errors.Is(err, repository.ErrUserNotFound) {
			log.Warn("notification owner lookup failed",
				"product_id", product.ID,
				"user_id", product.UserID,
				"error", err.Error(),
			)
		}
		return
	}

	event := &model.PriceChangeEvent{
		Product:  *product,
		OldPrice: oldPrice,
		NewPrice: newPrice,
		Delta:    newPrice.Sub(oldPrice),
	}

	if err := n.deliverer.Deliver(ctx, user.TelegramID, FormatMessage(event)); err != nil {
		log.Warn("notification delivery failed",
			"product_id", product.ID,
			"chat_id", user.TelegramID,
			"error", err.Error(),
		)
	}
}

// FormatMessage renders the fixed alert template.
func FormatMessage(event *model.PriceChangeEvent) string {
	direction := "упала"
	if event.Increased() {
		direction = "выросла"
	}

	return fmt.Sprintf(
		"🔔 Изменение цены!\n\n"+
			"📦 Товар: %s\n"+
			"💰 Старая цена: %s\n"+
			"💰 Новая цена: %s\n"+
			"📈 Изменение: %s (%s)\n\n"+
			"🔗 Ссылка: %s",
		event.Product.Name,
		money.Format(event.OldPrice),
		money.Format(event.NewPrice),
		money.FormatSigned(event.Delta),
		direction,
		event.Product.URL,
	)
}
