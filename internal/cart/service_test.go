package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/internal/pricing"
	"github.com/nmtruong/shophub-backend/internal/products"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type memCartRepo struct {
	mu    sync.Mutex
	lines map[string]*models.CartLine // keyed by email|productID
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{lines: map[string]*models.CartLine{}}
}

func key(email string, productID uuid.UUID) string {
	return email + "|" + productID.String()
}

func (m *memCartRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memCartRepo) ListByUser(ctx context.Context, userEmail string) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CartLine
	for _, line := range m.lines {
		if line.UserEmail == userEmail {
			out = append(out, *line)
		}
	}
	return out, nil
}

func (m *memCartRepo) FindLineForUpdate(ctx context.Context, userEmail string, productID uuid.UUID) (*models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	line, ok := m.lines[key(userEmail, productID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *line
	return &copied, nil
}

// Upsert mirrors the ON CONFLICT merge: the whole insert-or-increment is one
// critical section, like the single statement it stands in for.
func (m *memCartRepo) Upsert(ctx context.Context, line *models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(line.UserEmail, line.ProductID)
	if existing, ok := m.lines[k]; ok {
		existing.Quantity += line.Quantity
		existing.LineTotal = pricing.LineTotal(existing.UnitPrice, existing.Quantity)
		return nil
	}
	copied := *line
	m.lines[k] = &copied
	return nil
}

func (m *memCartRepo) Update(ctx context.Context, line *models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *line
	m.lines[key(line.UserEmail, line.ProductID)] = &copied
	return nil
}

func (m *memCartRepo) DeleteLine(ctx context.Context, userEmail string, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, key(userEmail, productID))
	return nil
}

func (m *memCartRepo) DeleteByUser(ctx context.Context, userEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, line := range m.lines {
		if line.UserEmail == userEmail {
			delete(m.lines, k)
		}
	}
	return nil
}

type stubProductRepo struct {
	product *models.Product
	err     error
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubProductRepo) List(ctx context.Context, filters products.ListFilters) ([]models.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
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

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, repo Repository, productRepo products.Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:        repo,
		ProductRepo: productRepo,
		Tx:          passthroughTx{},
		Now:         fixedNow,
	})
	require.NoError(t, err)
	return svc
}

func TestAddItemSnapshotsDiscountedPrice(t *testing.T) {
	start := fixedNow().Add(-time.Hour)
	end := fixedNow().Add(time.Hour)
	product := &models.Product{
		ID:              uuid.New(),
		Name:            "Laptop",
		Price:           decimal.RequireFromString("799.00"),
		DiscountPercent: 10,
		DiscountStart:   &start,
		DiscountEnd:     &end,
	}
	repo := newMemCartRepo()
	svc := newTestService(t, repo, &stubProductRepo{product: product})

	dto, err := svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.True(t, dto.Lines[0].UnitPrice.Equal(decimal.RequireFromString("719.10")))
	assert.True(t, dto.Lines[0].LineTotal.Equal(decimal.RequireFromString("2157.30")))
	assert.Equal(t, 3, dto.Count)
}

func TestAddItemMergesAndKeepsOriginalSnapshot(t *testing.T) {
	product := &models.Product{
		ID:    uuid.New(),
		Name:  "Mouse",
		Price: decimal.RequireFromString("25.00"),
	}
	repo := newMemCartRepo()
	svc := newTestService(t, repo, &stubProductRepo{product: product})

	_, err := svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	// price changes after the first add; the snapshot must not move
	product.Price = decimal.RequireFromString("40.00")

	dto, err := svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, 3, dto.Lines[0].Quantity)
	assert.True(t, dto.Lines[0].UnitPrice.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, dto.Lines[0].LineTotal.Equal(decimal.RequireFromString("75.00")))
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), &stubProductRepo{err: gorm.ErrRecordNotFound})

	_, err := svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: uuid.New(), Quantity: 1})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code)
}

func TestUpdateQuantityRecomputesLineTotal(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Mouse", Price: decimal.RequireFromString("25.00")}
	repo := newMemCartRepo()
	svc := newTestService(t, repo, &stubProductRepo{product: product})

	_, err := svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	dto, err := svc.UpdateQuantity(context.Background(), "buyer@example.com", product.ID, UpdateQuantityInput{Quantity: 4})
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.True(t, dto.Lines[0].LineTotal.Equal(decimal.RequireFromString("100.00")))
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Mouse", Price: decimal.RequireFromString("25.00")}
	repo := newMemCartRepo()
	svc := newTestService(t, repo, &stubProductRepo{product: product})

	_, err := svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	dto, err := svc.UpdateQuantity(context.Background(), "buyer@example.com", product.ID, UpdateQuantityInput{Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, dto.Lines)

	// absent line stays a no-op, like RemoveItem
	dto, err = svc.UpdateQuantity(context.Background(), "buyer@example.com", product.ID, UpdateQuantityInput{Quantity: -1})
	require.NoError(t, err)
	assert.Empty(t, dto.Lines)
}

func TestAddItemConcurrentAddsKeepEveryIncrement(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Mouse", Price: decimal.RequireFromString("25.00")}
	repo := newMemCartRepo()
	svc := newTestService(t, repo, &stubProductRepo{product: product})

	_, err := svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	start := make(chan struct{})
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.AddItem(context.Background(), "buyer@example.com", AddItemInput{ProductID: product.ID, Quantity: 1})
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	dto, err := svc.GetCart(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, 4, dto.Lines[0].Quantity)
	assert.True(t, dto.Lines[0].LineTotal.Equal(decimal.RequireFromString("100.00")))
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	svc := newTestService(t, newMemCartRepo(), &stubProductRepo{})

	dto, err := svc.RemoveItem(context.Background(), "buyer@example.com", uuid.New())
	require.NoError(t, err)
	assert.Empty(t, dto.Lines)
}

func TestClearEmptiesOnlyThatUser(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Mouse", Price: decimal.RequireFromString("25.00")}
	repo := newMemCartRepo()
	svc := newTestService(t, repo, &stubProductRepo{product: product})

	_, err := svc.AddItem(context.Background(), "a@example.com", AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "b@example.com", AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "a@example.com"))

	cartA, err := svc.GetCart(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, cartA.Lines)

	cartB, err := svc.GetCart(context.Background(), "b@example.com")
	require.NoError(t, err)
	assert.Len(t, cartB.Lines, 1)
}
