package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shoptrack/backend/internal/apperror"
	"github.com/shoptrack/backend/internal/marketplace"
	"github.com/shoptrack/backend/internal/model"
	"github.com/shoptrack/backend/internal/repository"
)

const defaultHistoryDays = 30

// PriceResolver resolves a marketplace reference to current product data.
type PriceResolver interface {
	Resolve(ctx context.Context, reference string) (*marketplace.ProductInfo, error)
}

// ProductService handles business logic for tracked products.
type ProductService struct {
	products         repository.ProductRepository
	history          repository.PriceHistoryRepository
	resolver         PriceResolver
	defaultThreshold decimal.Decimal
}

// NewProductService creates a new ProductService with the given dependencies.
func NewProductService(
	products repository.ProductRepository,
	history repository.PriceHistoryRepository,
	resolver PriceResolver,
	defaultThreshold decimal.Decimal,
) *ProductService {
	return &ProductService{
		products:         products,
		history:          history,
		resolver:         resolver,
		defaultThreshold: defaultThreshold,
	}
}

// TrackInput describes a new tracking request.
type TrackInput struct {
	Reference string           `json:"reference"`
	Threshold *decimal.Decimal `json:"threshold,omitempty"`
}

// Track validates the reference, resolves the current price and starts
// tracking. The resolved price becomes the baseline for future comparisons.
func (s *ProductService) Track(ctx context.Context, userID int64, input TrackInput) (*model.Product, error) {
	if !marketplace.BelongsToMarketplace(input.Reference) {
		return nil, apperror.BadRequest("link is not a supported marketplace product")
	}

	threshold := s.defaultThreshold
	if input.Threshold != nil {
		if input.Threshold.IsNegative() {
			return nil, apperror.ValidationError("threshold", "threshold must not be negative")
		}
		threshold = *input.Threshold
	}

	info, err := s.resolver.Resolve(ctx, input.Reference)
	if err != nil {
		if errors.Is(err, marketplace.ErrUnresolvable) {
			return nil, apperror.BadRequest("could not fetch the product, check the link")
		}
		return nil, fmt.Errorf("resolving product: %w", err)
	}

	product := &model.Product{
		UserID:         userID,
		Name:           info.Name,
		URL:            input.Reference,
		CurrentPrice:   info.Price,
		PriceThreshold: threshold,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	// Baseline point so history charts start at tracking time
	if err := s.history.Insert(ctx, product.ID, info.Price); err != nil {
		return nil, fmt.Errorf("recording baseline price: %w", err)
	}

	return product, nil
}

// List retrieves all active products tracked by the user.
func (s *ProductService) List(ctx context.Context, userID int64) ([]model.Product, error) {
	products, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing products for user %d: %w", userID, err)
	}
	return products, nil
}

// Deactivate stops tracking a product. Returns a not-found error when the
// product does not exist or belongs to another user.
func (s *ProductService) Deactivate(ctx context.Context, id, userID int64) error {
	if err := s.products.Deactivate(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return apperror.NotFound("product")
		}
		return fmt.Errorf("deactivating product %d: %w", id, err)
	}
	return nil
}

// History returns recorded price points for a product owned by the user,
// newest first. A non-positive days value defaults to 30.
func (s *ProductService) History(ctx context.Context, id, userID int64, days int) ([]model.PricePoint, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperror.NotFound("product")
		}
		return nil, fmt.Errorf("fetching product %d: %w", id, err)
	}
	if product.UserID != userID {
		return nil, apperror.NotFound("product")
	}

	if days <= 0 {
		days = defaultHistoryDays
	}
	points, err := s.history.History(ctx, id, days)
	if err != nil {
		return nil, fmt.Errorf("loading price history for product %d: %w", id, err)
	}
	return points, nil
}
