package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/internal/products"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

type memWishlistRepo struct {
	items []models.WishlistItem
}

func (m *memWishlistRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memWishlistRepo) ListByUser(ctx context.Context, userEmail string) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	for _, item := range m.items {
		if item.UserEmail == userEmail {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memWishlistRepo) Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	for _, existing := range m.items {
		if existing.UserEmail == item.UserEmail && existing.ProductID == item.ProductID {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	m.items = append(m.items, *item)
	return item, nil
}

func (m *memWishlistRepo) Delete(ctx context.Context, userEmail string, productID uuid.UUID) error {
	kept := m.items[:0]
	for _, item := range m.items {
		if item.UserEmail == userEmail && item.ProductID == productID {
			continue
		}
		kept = append(kept, item)
	}
	m.items = kept
	return nil
}

type stubProductRepo struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubProductRepo) List(ctx context.Context, filters products.ListFilters) ([]models.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.FindByID(ctx, id)
}

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) error { return nil }

func (s *stubProductRepo) UpdateRating(ctx context.Context, id uuid.UUID, average string, count int) error {
	return nil
}

func (s *stubProductRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func newTestService(t *testing.T, repo Repository, productRepo products.Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, ProductRepo: productRepo})
	require.NoError(t, err)
	return svc
}

func testProduct() *models.Product {
	return &models.Product{
		ID:    uuid.New(),
		Name:  "Noise Cancelling Headphones",
		Price: decimal.RequireFromString("129.99"),
		Image: "/uploads/headphones.jpg",
	}
}

func TestAddItemSnapshotsProduct(t *testing.T) {
	product := testProduct()
	repo := &memWishlistRepo{}
	svc := newTestService(t, repo, &stubProductRepo{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	err := svc.AddItem(context.Background(), "Buyer@Example.com", AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	items, err := svc.List(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, product.ID, items[0].ProductID)
	assert.Equal(t, "Noise Cancelling Headphones", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("129.99")))
	assert.Equal(t, "/uploads/headphones.jpg", items[0].Image)
}

func TestAddItemTwiceIsNoop(t *testing.T) {
	product := testProduct()
	repo := &memWishlistRepo{}
	svc := newTestService(t, repo, &stubProductRepo{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	require.NoError(t, svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID}))
	require.NoError(t, svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID}))

	items, err := svc.List(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc := newTestService(t, &memWishlistRepo{}, &stubProductRepo{byID: map[uuid.UUID]*models.Product{}})

	err := svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: uuid.New()})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code)
}

func TestRemoveItemIdempotent(t *testing.T) {
	product := testProduct()
	repo := &memWishlistRepo{}
	svc := newTestService(t, repo, &stubProductRepo{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	require.NoError(t, svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID}))
	require.NoError(t, svc.RemoveItem(context.Background(), "buyer@example.com", product.ID))
	require.NoError(t, svc.RemoveItem(context.Background(), "buyer@example.com", product.ID))

	items, err := svc.List(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.Empty(t, items)
}
