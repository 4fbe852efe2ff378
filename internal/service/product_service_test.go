package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shoptrack/backend/internal/apperror"
	"github.com/shoptrack/backend/internal/marketplace"
	"github.com/shoptrack/backend/internal/model"
	"github.com/shoptrack/backend/internal/repository"
)

const wbLink = "https://www.wildberries.ru/catalog/93378993/detail.aspx"

func newProductService() (*ProductService, *MockProductRepository, *MockPriceHistoryRepository, *MockPriceResolver) {
	products := new(MockProductRepository)
	history := new(MockPriceHistoryRepository)
	resolver := new(MockPriceResolver)
	s := NewProductService(products, history, resolver, decimal.NewFromInt(50))
	return s, products, history, resolver
}

func TestProductService_Track(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, products, history, resolver := newProductService()

	resolver.On("Resolve", ctx, wbLink).
		Return(&marketplace.ProductInfo{Name: "Кроссовки", Price: decimal.NewFromInt(1000)}, nil)
	products.On("Create", ctx, mock.MatchedBy(func(p *model.Product) bool {
		return p.UserID == 7 &&
			p.Name == "Кроссовки" &&
			p.CurrentPrice.Equal(decimal.NewFromInt(1000)) &&
			p.PriceThreshold.Equal(decimal.NewFromInt(50))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Product).ID = 3
	}).Return(nil)
	history.On("Insert", ctx, int64(3), mock.Anything).Return(nil)

	product, err := s.Track(ctx, 7, TrackInput{Reference: wbLink})

	require.NoError(t, err)
	assert.Equal(t, int64(3), product.ID)
	assert.Equal(t, "Кроссовки", product.Name)
	products.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestProductService_Track_CustomThreshold(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, products, history, resolver := newProductService()
	threshold := decimal.NewFromInt(100)

	resolver.On("Resolve", ctx, wbLink).
		Return(&marketplace.ProductInfo{Name: "Кроссовки", Price: decimal.NewFromInt(1000)}, nil)
	products.On("Create", ctx, mock.MatchedBy(func(p *model.Product) bool {
		return p.PriceThreshold.Equal(threshold)
	})).Return(nil)
	history.On("Insert", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err := s.Track(ctx, 7, TrackInput{Reference: wbLink, Threshold: &threshold})

	require.NoError(t, err)
	products.AssertExpectations(t)
}

func TestProductService_Track_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("unsupported link", func(t *testing.T) {
		t.Parallel()

		s, products, _, resolver := newProductService()

		_, err := s.Track(context.Background(), 7, TrackInput{Reference: "https://example.com/item/5"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrBadRequest))
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("negative threshold", func(t *testing.T) {
		t.Parallel()

		s, _, _, _ := newProductService()
		threshold := decimal.NewFromInt(-5)

		_, err := s.Track(context.Background(), 7, TrackInput{Reference: wbLink, Threshold: &threshold})

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrValidation))
	})

	t.Run("unresolvable product", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, products, _, resolver := newProductService()

		resolver.On("Resolve", ctx, wbLink).Return(nil, marketplace.ErrUnresolvable)

		_, err := s.Track(ctx, 7, TrackInput{Reference: wbLink})

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrBadRequest))
		products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestProductService_Deactivate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		s, products, _, _ := newProductService()
		products.On("Deactivate", ctx, int64(3), int64(7)).Return(nil)

		require.NoError(t, s.Deactivate(ctx, 3, 7))
	})

	t.Run("not found maps to apperror", func(t *testing.T) {
		t.Parallel()

		s, products, _, _ := newProductService()
		products.On("Deactivate", ctx, int64(3), int64(8)).Return(repository.ErrProductNotFound)

		err := s.Deactivate(ctx, 3, 8)

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})
}

func TestProductService_History(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns points for owner", func(t *testing.T) {
		t.Parallel()

		s, products, history, _ := newProductService()
		products.On("GetByID", ctx, int64(3)).Return(&model.Product{ID: 3, UserID: 7}, nil)
		history.On("History", ctx, int64(3), 30).
			Return([]model.PricePoint{{ID: 1, ProductID: 3, Price: decimal.NewFromInt(1000)}}, nil)

		points, err := s.History(ctx, 3, 7, 0)

		require.NoError(t, err)
		assert.Len(t, points, 1)
		history.AssertExpectations(t)
	})

	t.Run("hides other users' products", func(t *testing.T) {
		t.Parallel()

		s, products, history, _ := newProductService()
		products.On("GetByID", ctx, int64(3)).Return(&model.Product{ID: 3, UserID: 7}, nil)

		_, err := s.History(ctx, 3, 8, 30)

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
		history.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything)
	})
}
