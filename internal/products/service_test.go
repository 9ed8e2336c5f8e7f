package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/pkg/db/models"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

type stubProductsRepo struct {
	listFn          func(ctx context.Context, filters ListFilters) ([]models.Product, error)
	findByIDFn      func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	findForUpdateFn func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	createFn        func(ctx context.Context, product *models.Product) (*models.Product, error)
	updateFn        func(ctx context.Context, product *models.Product) error
	updateRatingFn  func(ctx context.Context, id uuid.UUID, average string, count int) error
	deleteFn        func(ctx context.Context, id uuid.UUID) error
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProductsRepo) List(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	return s.listFn(ctx, filters)
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubProductsRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.findForUpdateFn(ctx, id)
}

func (s *stubProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	return s.createFn(ctx, product)
}

func (s *stubProductsRepo) Update(ctx context.Context, product *models.Product) error {
	return s.updateFn(ctx, product)
}

func (s *stubProductsRepo) UpdateRating(ctx context.Context, id uuid.UUID, average string, count int) error {
	return s.updateRatingFn(ctx, id, average, count)
}

func (s *stubProductsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestListAnnotatesEffectivePrice(t *testing.T) {
	start := fixedNow().Add(-time.Hour)
	end := fixedNow().Add(time.Hour)
	repo := &stubProductsRepo{
		listFn: func(ctx context.Context, filters ListFilters) ([]models.Product, error) {
			return []models.Product{
				{
					ID:              uuid.New(),
					Name:            "Laptop",
					Price:           decimal.RequireFromString("799.00"),
					DiscountPercent: 10,
					DiscountStart:   &start,
					DiscountEnd:     &end,
				},
				{
					ID:    uuid.New(),
					Name:  "Mouse",
					Price: decimal.RequireFromString("25.00"),
				},
			}, nil
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo, Now: fixedNow})
	require.NoError(t, err)

	dtos, err := svc.List(context.Background(), ListFilters{})
	require.NoError(t, err)
	require.Len(t, dtos, 2)

	assert.True(t, dtos[0].DiscountActive)
	assert.True(t, dtos[0].EffectivePrice.Equal(decimal.RequireFromString("719.10")))
	assert.False(t, dtos[1].DiscountActive)
	assert.True(t, dtos[1].EffectivePrice.Equal(decimal.RequireFromString("25.00")))
}

func TestCreateValidatesPriceAndDiscount(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubProductsRepo{}, Now: fixedNow})
	require.NoError(t, err)

	cases := []struct {
		name  string
		input UpsertProductInput
	}{
		{"bad price", UpsertProductInput{Name: "X", Category: "C", Price: "abc"}},
		{"negative price", UpsertProductInput{Name: "X", Category: "C", Price: "-1"}},
		{"percent too high", UpsertProductInput{Name: "X", Category: "C", Price: "10", DiscountPercent: 101}},
		{"missing name", UpsertProductInput{Category: "C", Price: "10"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.Error(t, err)

			var appErr *pkgerrors.Error
			require.True(t, pkgerrors.As(err, &appErr))
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code)
		})
	}
}

func TestCreateRejectsInvertedDiscountWindow(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubProductsRepo{}, Now: fixedNow})
	require.NoError(t, err)

	start := fixedNow()
	end := start.Add(-time.Hour)
	_, err = svc.Create(context.Background(), UpsertProductInput{
		Name:            "X",
		Category:        "C",
		Price:           "10",
		DiscountPercent: 20,
		DiscountStart:   &start,
		DiscountEnd:     &end,
	})
	require.Error(t, err)
}

func TestUpdatePreservesRatingAggregates(t *testing.T) {
	existing := &models.Product{
		ID:            uuid.New(),
		Name:          "Laptop",
		Category:      "Electronics",
		Price:         decimal.RequireFromString("799.00"),
		AverageRating: decimal.RequireFromString("4.5"),
		RatingCount:   12,
	}
	var saved *models.Product
	repo := &stubProductsRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, product *models.Product) error {
			saved = product
			return nil
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo, Now: fixedNow})
	require.NoError(t, err)

	dto, err := svc.Update(context.Background(), existing.ID, UpsertProductInput{
		Name:     "Laptop Pro",
		Category: "Electronics",
		Price:    "899.00",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Laptop Pro", saved.Name)
	assert.Equal(t, 12, saved.RatingCount)
	assert.True(t, dto.AverageRating.Equal(decimal.RequireFromString("4.5")))
}

func TestGetMissingProductReturnsNotFound(t *testing.T) {
	repo := &stubProductsRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo, Now: fixedNow})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code)
}
