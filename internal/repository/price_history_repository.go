package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shoptrack/backend/internal/model"
)

// PriceHistoryRepository defines data access for observed price points
type PriceHistoryRepository interface {
	Insert(ctx context.Context, productID int64, price decimal.Decimal) error
	History(ctx context.Context, productID int64, days int) ([]model.PricePoint, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

type priceHistoryRepository struct {
	db *sqlx.DB
}

// NewPriceHistoryRepository creates a new price history repository
func NewPriceHistoryRepository(db *sqlx.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

func (r *priceHistoryRepository) Insert(ctx context.Context, productID int64, price decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_history (product_id, price) VALUES ($1, $2)
	`, productID, price)
	if err != nil {
		return fmt.Errorf("insert price point: %w", err)
	}
	return nil
}

// History returns price points for a product within the last N days, newest
// first.
func (r *priceHistoryRepository) History(ctx context.Context, productID int64, days int) ([]model.PricePoint, error) {
	var points []model.PricePoint
	err := r.db.SelectContext(ctx, &points, `
		SELECT * FROM price_history
		WHERE product_id = $1 AND recorded_at >= NOW() - make_interval(days => $2)
		ORDER BY recorded_at DESC
	`, productID, days)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	return points, nil
}

// DeleteOlderThan prunes price points older than the retention window and
// reports how many rows were removed.
func (r *priceHistoryRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM price_history WHERE recorded_at < NOW() - make_interval(days => $1)
	`, days)
	if err != nil {
		return 0, fmt.Errorf("prune price history: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
