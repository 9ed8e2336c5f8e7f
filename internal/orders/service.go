package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/internal/cart"
	"github.com/nmtruong/shophub-backend/internal/pricing"
	"github.com/nmtruong/shophub-backend/internal/products"
	"github.com/nmtruong/shophub-backend/pkg/config"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	"github.com/nmtruong/shophub-backend/pkg/enums"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
	"github.com/nmtruong/shophub-backend/pkg/logger"
	"github.com/nmtruong/shophub-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo        Repository
	CartRepo    cart.Repository
	ProductRepo products.Repository
	Tx          txRunner
	Logger      *logger.Logger
	Checkout    config.CheckoutConfig
	Now         func() time.Time
}

// Service exposes checkout plus order lifecycle operations.
type Service interface {
	Checkout(ctx context.Context, userEmail string, input CheckoutInput) (CheckoutResultDTO, error)
	ListMine(ctx context.Context, userEmail string) ([]OrderDTO, error)
	Get(ctx context.Context, id uuid.UUID, requesterEmail string, isAdmin bool) (OrderDTO, error)
	Cancel(ctx context.Context, id uuid.UUID, requesterEmail string) (OrderDTO, error)
	ListAll(ctx context.Context, filters AdminListFilters, params pagination.Params) (OrderPageDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (OrderDTO, error)
}

type service struct {
	repo        Repository
	cartRepo    cart.Repository
	productRepo products.Repository
	tx          txRunner
	logg        *logger.Logger
	checkout    config.CheckoutConfig
	now         func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	}
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
		tx:          params.Tx,
		logg:        params.Logger,
		checkout:    params.Checkout,
		now:         now,
	}, nil
}

// Checkout converts every cart line into an order snapshot inside one
// transaction. The shipping cost is split evenly across lines with the
// rounding remainder landing on the last line, so the shares always sum back
// to the flat fee. The cart is cleared after commit on a best-effort basis.
// A buy-now item purchases one product directly and never touches the cart.
func (s *service) Checkout(ctx context.Context, userEmail string, input CheckoutInput) (CheckoutResultDTO, error) {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return CheckoutResultDTO{}, err
	}
	userName := strings.TrimSpace(input.UserName)
	phone := strings.TrimSpace(input.Phone)
	address := strings.TrimSpace(input.ShippingAddress)
	payment := strings.TrimSpace(input.PaymentMethod)
	if userName == "" || phone == "" || address == "" || payment == "" {
		return CheckoutResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name, phone, shipping address, and payment method are required")
	}
	method, err := enums.ParseShippingMethod(input.ShippingMethod)
	if err != nil {
		return CheckoutResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping method")
	}

	fromCart := input.Item == nil
	var lines []checkoutLine
	if fromCart {
		cartLines, err := s.cartRepo.ListByUser(ctx, email)
		if err != nil {
			return CheckoutResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(cartLines) == 0 {
			return CheckoutResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		lines = make([]checkoutLine, 0, len(cartLines))
		for _, line := range cartLines {
			lines = append(lines, checkoutLine{
				ProductID: line.ProductID,
				Name:      line.Name,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Variation: line.Variation,
			})
		}
	} else {
		line, err := s.buyNowLine(ctx, input.Item)
		if err != nil {
			return CheckoutResultDTO{}, err
		}
		lines = []checkoutLine{line}
	}

	shippingCost := s.shippingCost(method)
	shares := splitShipping(shippingCost, len(lines))
	taxRate := decimal.NewFromInt(int64(s.checkout.TaxRatePercent))

	var group *models.OrderGroup
	var groupID *uuid.UUID
	if fromCart {
		group = &models.OrderGroup{
			ID:           uuid.New(),
			UserEmail:    email,
			ShippingCost: shippingCost,
			ItemCount:    len(lines),
		}
		groupID = &group.ID
	}

	orders := make([]models.Order, 0, len(lines))
	grandTotal := decimal.Zero
	for i, line := range lines {
		price := pricing.LineTotal(line.UnitPrice, line.Quantity)
		tax := pricing.Tax(price, taxRate)
		total := pricing.Round(price.Add(tax).Add(shares[i]))
		grandTotal = pricing.Round(grandTotal.Add(total))

		orders = append(orders, models.Order{
			ID:              uuid.New(),
			GroupID:         groupID,
			ProductID:       line.ProductID,
			ProductName:     line.Name,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			Price:           price,
			UserEmail:       email,
			UserName:        userName,
			Phone:           phone,
			ShippingAddress: address,
			ShippingMethod:  method,
			PaymentMethod:   payment,
			ShippingCost:    shares[i],
			Tax:             tax,
			TotalAmount:     total,
			Variation:       line.Variation,
			Status:          enums.OrderStatusOrdered,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if group != nil {
			if _, err := repo.CreateGroup(ctx, group); err != nil {
				return err
			}
		}
		return repo.CreateOrders(ctx, orders)
	})
	if err != nil {
		return CheckoutResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout")
	}

	if fromCart {
		// best effort; a lingering cart never blocks a placed order
		if err := s.cartRepo.DeleteByUser(ctx, email); err != nil {
			s.logg.Error(s.logg.WithUserEmail(ctx, email), "clearing cart after checkout", err)
		}
	}

	result := CheckoutResultDTO{
		GroupID:      groupID,
		Orders:       make([]OrderDTO, 0, len(orders)),
		ShippingCost: shippingCost,
		GrandTotal:   grandTotal,
	}
	for i := range orders {
		result.Orders = append(result.Orders, toDTO(&orders[i]))
	}
	return result, nil
}

// ListMine returns the requester's orders, newest first.
func (s *service) ListMine(ctx context.Context, userEmail string) ([]OrderDTO, error) {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByUser(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toDTO(&rows[i]))
	}
	return dtos, nil
}

// Get returns one order. Non-admin requesters only see their own.
func (s *service) Get(ctx context.Context, id uuid.UUID, requesterEmail string, isAdmin bool) (OrderDTO, error) {
	if id == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !isAdmin && !strings.EqualFold(order.UserEmail, requesterEmail) {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
	}
	return toDTO(order), nil
}

// Cancel lets the owner abort an order that has not started fulfillment.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, requesterEmail string) (OrderDTO, error) {
	if id == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	email, err := normalizeEmail(requesterEmail)
	if err != nil {
		return OrderDTO{}, err
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !strings.EqualFold(order.UserEmail, email) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
		}
		if order.Status != enums.OrderStatusOrdered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = enums.OrderStatusCancelled
		updated = order
		return nil
	})
	if err != nil {
		return OrderDTO{}, err
	}
	return toDTO(updated), nil
}

// ListAll returns the paginated admin view across all users.
func (s *service) ListAll(ctx context.Context, filters AdminListFilters, params pagination.Params) (OrderPageDTO, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return OrderPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListAll(ctx, filters, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return OrderPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := OrderPageDTO{Orders: make([]OrderDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		rows = rows[:limit]
	}
	for i := range rows {
		page.Orders = append(page.Orders, toDTO(&rows[i]))
	}
	return page, nil
}

// UpdateStatus moves the order along the fulfillment machine. The progression
// is forward-only; Cancelled is reachable from any non-terminal state.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (OrderDTO, error) {
	if id == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	target, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == target {
			updated = order
			return nil
		}
		if !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed")
		}
		if err := repo.UpdateStatus(ctx, order.ID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = target
		updated = order
		return nil
	})
	if err != nil {
		return OrderDTO{}, err
	}
	return toDTO(updated), nil
}

type checkoutLine struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Variation string
}

func (s *service) buyNowLine(ctx context.Context, item *BuyNowItemInput) (checkoutLine, error) {
	if item.ProductID == uuid.Nil {
		return checkoutLine{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}
	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return checkoutLine{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return checkoutLine{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return checkoutLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: pricing.EffectivePrice(product, s.now()),
		Quantity:  quantity,
		Variation: strings.TrimSpace(item.Variation),
	}, nil
}

func (s *service) shippingCost(method enums.ShippingMethod) decimal.Decimal {
	switch method {
	case enums.ShippingMethodExpress:
		return pricing.Round(decimal.NewFromFloat(s.checkout.ExpressShippingFee))
	case enums.ShippingMethodOvernight:
		return pricing.Round(decimal.NewFromFloat(s.checkout.OvernightShippingFee))
	default:
		return decimal.Zero
	}
}

// splitShipping divides the flat fee into per-line shares. Every share is
// rounded to cents; the last share absorbs the remainder.
func splitShipping(total decimal.Decimal, n int) []decimal.Decimal {
	shares := make([]decimal.Decimal, n)
	if n == 0 {
		return shares
	}
	base := pricing.Round(total.Div(decimal.NewFromInt(int64(n))))
	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		shares[i] = base
		running = running.Add(base)
	}
	shares[n-1] = pricing.Round(total.Sub(running))
	return shares
}

func toDTO(order *models.Order) OrderDTO {
	return OrderDTO{
		ID:              order.ID,
		GroupID:         order.GroupID,
		ProductID:       order.ProductID,
		ProductName:     order.ProductName,
		Quantity:        order.Quantity,
		UnitPrice:       order.UnitPrice,
		Price:           order.Price,
		Tax:             order.Tax,
		ShippingCost:    order.ShippingCost,
		TotalAmount:     order.TotalAmount,
		UserEmail:       order.UserEmail,
		UserName:        order.UserName,
		Phone:           order.Phone,
		ShippingAddress: order.ShippingAddress,
		ShippingMethod:  order.ShippingMethod,
		PaymentMethod:   order.PaymentMethod,
		Variation:       order.Variation,
		Status:          order.Status,
		CreatedAt:       order.CreatedAt,
	}
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user email is required")
	}
	return trimmed, nil
}
