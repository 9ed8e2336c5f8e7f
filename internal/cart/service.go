package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/internal/pricing"
	"github.com/nmtruong/shophub-backend/internal/products"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo        Repository
	ProductRepo products.Repository
	Tx          txRunner
	Now         func() time.Time
}

// Service exposes business rules for cart management.
type Service interface {
	GetCart(ctx context.Context, userEmail string) (CartDTO, error)
	AddItem(ctx context.Context, userEmail string, input AddItemInput) (CartDTO, error)
	UpdateQuantity(ctx context.Context, userEmail string, productID uuid.UUID, input UpdateQuantityInput) (CartDTO, error)
	RemoveItem(ctx context.Context, userEmail string, productID uuid.UUID) (CartDTO, error)
	Clear(ctx context.Context, userEmail string) error
}

type service struct {
	repo        Repository
	productRepo products.Repository
	tx          txRunner
	now         func() time.Time
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		productRepo: params.ProductRepo,
		tx:          params.Tx,
		now:         now,
	}, nil
}

// GetCart returns the user's cart lines plus the running subtotal.
func (s *service) GetCart(ctx context.Context, userEmail string) (CartDTO, error) {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return CartDTO{}, err
	}
	lines, err := s.repo.ListByUser(ctx, email)
	if err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	return buildCartDTO(lines), nil
}

// AddItem merges the product into the cart. A repeat add bumps the quantity on
// the existing line; the unit price stays at the snapshot taken the first time
// the product entered the cart.
func (s *service) AddItem(ctx context.Context, userEmail string, input AddItemInput) (CartDTO, error) {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return CartDTO{}, err
	}
	if input.ProductID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	qty := input.Quantity
	if qty <= 0 {
		qty = 1
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	// Insert and repeat-add merge are one statement, serialized on the
	// (user_email, product_id) unique index.
	unit := pricing.EffectivePrice(product, s.now())
	line := &models.CartLine{
		ID:        uuid.New(),
		UserEmail: email,
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.Image,
		UnitPrice: unit,
		Quantity:  qty,
		LineTotal: pricing.LineTotal(unit, qty),
		Variation: strings.TrimSpace(input.Variation),
	}
	if err := s.repo.Upsert(ctx, line); err != nil {
		return CartDTO{}, wrapCartErr(err, "add cart line")
	}
	return s.GetCart(ctx, email)
}

// UpdateQuantity sets the exact quantity for an existing line. A quantity
// below one removes the line, the same as RemoveItem.
func (s *service) UpdateQuantity(ctx context.Context, userEmail string, productID uuid.UUID, input UpdateQuantityInput) (CartDTO, error) {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return CartDTO{}, err
	}
	if productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return s.RemoveItem(ctx, email, productID)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLineForUpdate(ctx, email, productID)
		if err != nil {
			return err
		}
		line.Quantity = input.Quantity
		line.LineTotal = pricing.LineTotal(line.UnitPrice, line.Quantity)
		return repo.Update(ctx, line)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return CartDTO{}, wrapCartErr(err, "update cart line")
	}
	return s.GetCart(ctx, email)
}

// RemoveItem drops the line for the product. Removing an absent line succeeds.
func (s *service) RemoveItem(ctx context.Context, userEmail string, productID uuid.UUID) (CartDTO, error) {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return CartDTO{}, err
	}
	if productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.repo.DeleteLine(ctx, email, productID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return s.GetCart(ctx, email)
}

// Clear deletes every line the user has.
func (s *service) Clear(ctx context.Context, userEmail string) error {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByUser(ctx, email); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func buildCartDTO(lines []models.CartLine) CartDTO {
	dto := CartDTO{
		Lines:    make([]CartLineDTO, 0, len(lines)),
		Subtotal: decimal.Zero,
	}
	for _, line := range lines {
		dto.Lines = append(dto.Lines, CartLineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
			Variation: line.Variation,
			CreatedAt: line.CreatedAt,
		})
		dto.Subtotal = pricing.Round(dto.Subtotal.Add(line.LineTotal))
		dto.Count += line.Quantity
	}
	return dto
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user email is required")
	}
	return trimmed, nil
}

func wrapCartErr(err error, msg string) error {
	var appErr *pkgerrors.Error
	if pkgerrors.As(err, &appErr) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
