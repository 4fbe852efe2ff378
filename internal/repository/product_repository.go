package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shoptrack/backend/internal/model"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines data access for tracked products
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)
	UpdatePrice(ctx context.Context, id int64, newPrice decimal.Decimal) (*model.Product, error)
	Deactivate(ctx context.Context, id, userID int64) error
}

type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (user_id, name, url, current_price, price_threshold)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		product.UserID, product.Name, product.URL, product.CurrentPrice, product.PriceThreshold,
	).Scan(&product.ID, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.GetContext(ctx, &product, `SELECT * FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return &product, err
}

// ListByUser returns the user's active products, oldest first.
func (r *productRepository) ListByUser(ctx context.Context, userID int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.SelectContext(ctx, &products, `
		SELECT * FROM products WHERE user_id = $1 AND is_active = true ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ListActive returns every product eligible for scheduled checking.
func (r *productRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.SelectContext(ctx, &products, `
		SELECT * FROM products WHERE is_active = true ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	return products, nil
}

// UpdatePrice rotates current_price into previous_price and stores the new
// value. Returns ErrProductNotFound if the product vanished between the
// pass's read and this write.
func (r *productRepository) UpdatePrice(ctx context.Context, id int64, newPrice decimal.Decimal) (*model.Product, error) {
	var product model.Product
	query := `
		UPDATE products SET
			previous_price = current_price,
			current_price = $2,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *`

	err := r.db.QueryRowxContext(ctx, query, id, newPrice).StructScan(&product)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update price: %w", err)
	}
	return &product, nil
}

// Deactivate soft-deletes a product. The row is retained for history.
func (r *productRepository) Deactivate(ctx context.Context, id, userID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products SET is_active = false, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = true
	`, id, userID)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrProductNotFound
	}
	return nil
}
