package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/internal/cart"
	"github.com/nmtruong/shophub-backend/internal/products"
	"github.com/nmtruong/shophub-backend/pkg/config"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	"github.com/nmtruong/shophub-backend/pkg/enums"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
	"github.com/nmtruong/shophub-backend/pkg/logger"
	"github.com/nmtruong/shophub-backend/pkg/pagination"
)

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrdersRepo struct {
	createGroupFn   func(ctx context.Context, group *models.OrderGroup) (*models.OrderGroup, error)
	createOrdersFn  func(ctx context.Context, orders []models.Order) error
	findByIDFn      func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	findForUpdateFn func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listByUserFn    func(ctx context.Context, userEmail string) ([]models.Order, error)
	listAllFn       func(ctx context.Context, filters AdminListFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	updateStatusFn  func(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateGroup(ctx context.Context, group *models.OrderGroup) (*models.OrderGroup, error) {
	if s.createGroupFn != nil {
		return s.createGroupFn(ctx, group)
	}
	return group, nil
}

func (s *stubOrdersRepo) CreateOrders(ctx context.Context, orders []models.Order) error {
	if s.createOrdersFn != nil {
		return s.createOrdersFn(ctx, orders)
	}
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubOrdersRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.findForUpdateFn(ctx, id)
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userEmail string) ([]models.Order, error) {
	return s.listByUserFn(ctx, userEmail)
}

func (s *stubOrdersRepo) ListAll(ctx context.Context, filters AdminListFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	return s.listAllFn(ctx, filters, cursor, limit)
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, id, status)
	}
	return nil
}

type stubCartRepo struct {
	lines     []models.CartLine
	cleared   []string
	listErr   error
	deleteErr error
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) cart.Repository { return s }

func (s *stubCartRepo) ListByUser(ctx context.Context, userEmail string) ([]models.CartLine, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.lines, nil
}

func (s *stubCartRepo) FindLineForUpdate(ctx context.Context, userEmail string, productID uuid.UUID) (*models.CartLine, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) Upsert(ctx context.Context, line *models.CartLine) error { return nil }

func (s *stubCartRepo) Update(ctx context.Context, line *models.CartLine) error { return nil }

func (s *stubCartRepo) DeleteLine(ctx context.Context, userEmail string, productID uuid.UUID) error {
	return nil
}

func (s *stubCartRepo) DeleteByUser(ctx context.Context, userEmail string) error {
	s.cleared = append(s.cleared, userEmail)
	return s.deleteErr
}

type stubProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubProductRepo) List(ctx context.Context, filters products.ListFilters) ([]models.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
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

func checkoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		TaxRatePercent:       8,
		ExpressShippingFee:   9.99,
		OvernightShippingFee: 24.99,
	}
}

func newTestService(t *testing.T, repo Repository, cartRepo cart.Repository) Service {
	t.Helper()
	return newTestServiceWithProducts(t, repo, cartRepo, &stubProductRepo{})
}

func newTestServiceWithProducts(t *testing.T, repo Repository, cartRepo cart.Repository, productRepo products.Repository) Service {
	t.Helper()
	logg := logger.New(logger.Options{Output: io.Discard})

	svc, err := NewService(ServiceParams{
		Repo:        repo,
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		Tx:          passthroughTx{},
		Logger:      logg,
		Checkout:    checkoutConfig(),
		Now:         func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func validCheckoutInput(method string) CheckoutInput {
	return CheckoutInput{
		UserName:        "Ana Buyer",
		Phone:           "+1-555-0100",
		ShippingAddress: "1 Main St, Springfield",
		ShippingMethod:  method,
		PaymentMethod:   "cod",
	}
}

func TestCheckoutComputesLineTotals(t *testing.T) {
	cartRepo := &stubCartRepo{
		lines: []models.CartLine{{
			ID:        uuid.New(),
			UserEmail: "buyer@example.com",
			ProductID: uuid.New(),
			Name:      "Laptop",
			UnitPrice: decimal.RequireFromString("719.10"),
			Quantity:  3,
			LineTotal: decimal.RequireFromString("2157.30"),
		}},
	}
	var persisted []models.Order
	repo := &stubOrdersRepo{
		createOrdersFn: func(ctx context.Context, orders []models.Order) error {
			persisted = orders
			return nil
		},
	}
	svc := newTestService(t, repo, cartRepo)

	result, err := svc.Checkout(context.Background(), "buyer@example.com", validCheckoutInput("standard"))
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	require.Len(t, persisted, 1)

	order := result.Orders[0]
	assert.True(t, order.Price.Equal(decimal.RequireFromString("2157.30")), "price %s", order.Price)
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("172.58")), "tax %s", order.Tax)
	assert.True(t, order.ShippingCost.Equal(decimal.Zero))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("2329.88")), "total %s", order.TotalAmount)
	assert.Equal(t, enums.OrderStatusOrdered, order.Status)
	assert.Equal(t, []string{"buyer@example.com"}, cartRepo.cleared)
}

func TestCheckoutSplitsShippingAcrossLines(t *testing.T) {
	mkLine := func(name, price string) models.CartLine {
		return models.CartLine{
			ID:        uuid.New(),
			UserEmail: "buyer@example.com",
			ProductID: uuid.New(),
			Name:      name,
			UnitPrice: decimal.RequireFromString(price),
			Quantity:  1,
			LineTotal: decimal.RequireFromString(price),
		}
	}
	cartRepo := &stubCartRepo{lines: []models.CartLine{
		mkLine("A", "10.00"), mkLine("B", "20.00"), mkLine("C", "30.00"),
	}}
	svc := newTestService(t, &stubOrdersRepo{}, cartRepo)

	result, err := svc.Checkout(context.Background(), "buyer@example.com", validCheckoutInput("express"))
	require.NoError(t, err)
	require.Len(t, result.Orders, 3)

	// 9.99 / 3 = 3.33 each; the shares must sum back to the flat fee
	sum := decimal.Zero
	for _, order := range result.Orders {
		sum = sum.Add(order.ShippingCost)
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("9.99")), "sum %s", sum)
	assert.True(t, result.ShippingCost.Equal(decimal.RequireFromString("9.99")))
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	svc := newTestService(t, &stubOrdersRepo{}, &stubCartRepo{})

	_, err := svc.Checkout(context.Background(), "buyer@example.com", validCheckoutInput("standard"))
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code)
}

func TestCheckoutUnknownShippingMethod(t *testing.T) {
	cartRepo := &stubCartRepo{lines: []models.CartLine{{
		ID:        uuid.New(),
		UserEmail: "buyer@example.com",
		ProductID: uuid.New(),
		Name:      "A",
		UnitPrice: decimal.RequireFromString("10.00"),
		Quantity:  1,
		LineTotal: decimal.RequireFromString("10.00"),
	}}}
	svc := newTestService(t, &stubOrdersRepo{}, cartRepo)

	_, err := svc.Checkout(context.Background(), "buyer@example.com", validCheckoutInput("teleport"))
	require.Error(t, err)
}

func TestCheckoutSurvivesCartClearFailure(t *testing.T) {
	cartRepo := &stubCartRepo{
		lines: []models.CartLine{{
			ID:        uuid.New(),
			UserEmail: "buyer@example.com",
			ProductID: uuid.New(),
			Name:      "A",
			UnitPrice: decimal.RequireFromString("10.00"),
			Quantity:  1,
			LineTotal: decimal.RequireFromString("10.00"),
		}},
		deleteErr: assert.AnError,
	}
	svc := newTestService(t, &stubOrdersRepo{}, cartRepo)

	result, err := svc.Checkout(context.Background(), "buyer@example.com", validCheckoutInput("standard"))
	require.NoError(t, err)
	assert.Len(t, result.Orders, 1)
}

func TestCheckoutBuyNowSkipsCart(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	product := &models.Product{
		ID:              uuid.New(),
		Name:            "Laptop",
		Price:           decimal.RequireFromString("799.00"),
		DiscountPercent: 10,
		DiscountStart:   &start,
		DiscountEnd:     &end,
	}
	productRepo := &stubProductRepo{products: map[uuid.UUID]*models.Product{product.ID: product}}
	cartRepo := &stubCartRepo{lines: []models.CartLine{{
		ID:        uuid.New(),
		UserEmail: "buyer@example.com",
		ProductID: uuid.New(),
		Name:      "Unrelated",
		UnitPrice: decimal.RequireFromString("5.00"),
		Quantity:  1,
		LineTotal: decimal.RequireFromString("5.00"),
	}}}
	svc := newTestServiceWithProducts(t, &stubOrdersRepo{}, cartRepo, productRepo)

	input := validCheckoutInput("standard")
	input.Item = &BuyNowItemInput{ProductID: product.ID, Quantity: 3}

	result, err := svc.Checkout(context.Background(), "buyer@example.com", input)
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)

	order := result.Orders[0]
	assert.True(t, order.UnitPrice.Equal(decimal.RequireFromString("719.10")), "unit price %s", order.UnitPrice)
	assert.True(t, order.Price.Equal(decimal.RequireFromString("2157.30")), "price %s", order.Price)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("2329.88")), "total %s", order.TotalAmount)
	assert.Nil(t, order.GroupID, "buy-now orders carry no group")
	assert.Nil(t, result.GroupID)
	assert.Empty(t, cartRepo.cleared, "buy-now must leave the cart alone")
}

func TestCheckoutBuyNowUnknownProduct(t *testing.T) {
	svc := newTestService(t, &stubOrdersRepo{}, &stubCartRepo{})

	input := validCheckoutInput("standard")
	input.Item = &BuyNowItemInput{ProductID: uuid.New(), Quantity: 1}

	_, err := svc.Checkout(context.Background(), "buyer@example.com", input)
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserEmail: "buyer@example.com", Status: enums.OrderStatusShipped}
	repo := &stubOrdersRepo{
		findForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			copied := *order
			return &copied, nil
		},
	}
	svc := newTestService(t, repo, &stubCartRepo{})

	// forward
	dto, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "Delivered"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, dto.Status)

	// backward
	_, err = svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "Packed"})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code)
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPacked}
	updates := 0
	repo := &stubOrdersRepo{
		findForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			copied := *order
			return &copied, nil
		},
		updateStatusFn: func(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
			updates++
			return nil
		},
	}
	svc := newTestService(t, repo, &stubCartRepo{})

	dto, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "Packed"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPacked, dto.Status)
	assert.Zero(t, updates)
}

func TestUpdateStatusFromTerminalRejected(t *testing.T) {
	for _, terminal := range []enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled} {
		order := &models.Order{ID: uuid.New(), Status: terminal}
		repo := &stubOrdersRepo{
			findForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
				copied := *order
				return &copied, nil
			},
		}
		svc := newTestService(t, repo, &stubCartRepo{})

		_, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "Cancelled"})
		if terminal == enums.OrderStatusCancelled {
			// same status is a noop, pick a different target
			_, err = svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "Packed"})
		}
		require.Error(t, err, "from %s", terminal)
	}
}

func TestCancelOnlyWhileOrdered(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserEmail: "buyer@example.com", Status: enums.OrderStatusOrdered}
	repo := &stubOrdersRepo{
		findForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			copied := *order
			return &copied, nil
		},
	}
	svc := newTestService(t, repo, &stubCartRepo{})

	dto, err := svc.Cancel(context.Background(), order.ID, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, dto.Status)

	order.Status = enums.OrderStatusShipped
	_, err = svc.Cancel(context.Background(), order.ID, "buyer@example.com")
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code)
}

func TestCancelForeignOrderForbidden(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserEmail: "owner@example.com", Status: enums.OrderStatusOrdered}
	repo := &stubOrdersRepo{
		findForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			copied := *order
			return &copied, nil
		},
	}
	svc := newTestService(t, repo, &stubCartRepo{})

	_, err := svc.Cancel(context.Background(), order.ID, "intruder@example.com")
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code)
}

func TestGetEnforcesOwnership(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserEmail: "owner@example.com", Status: enums.OrderStatusOrdered}
	repo := &stubOrdersRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			copied := *order
			return &copied, nil
		},
	}
	svc := newTestService(t, repo, &stubCartRepo{})

	_, err := svc.Get(context.Background(), order.ID, "owner@example.com", false)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), order.ID, "other@example.com", false)
	require.Error(t, err)

	_, err = svc.Get(context.Background(), order.ID, "other@example.com", true)
	require.NoError(t, err)
}

func TestListAllPaginates(t *testing.T) {
	now := time.Now()
	rows := make([]models.Order, 3)
	for i := range rows {
		rows[i] = models.Order{ID: uuid.New(), CreatedAt: now.Add(-time.Duration(i) * time.Minute)}
	}
	repo := &stubOrdersRepo{
		listAllFn: func(ctx context.Context, filters AdminListFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
			assert.Equal(t, 3, limit)
			return rows, nil
		},
	}
	svc := newTestService(t, repo, &stubCartRepo{})

	page, err := svc.ListAll(context.Background(), AdminListFilters{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.NotEmpty(t, page.NextCursor)
}
