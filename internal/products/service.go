package products

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/internal/pricing"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

// ServiceParams groups dependencies for the products service.
type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

// Service exposes catalog reads plus the admin mutations.
type Service interface {
	List(ctx context.Context, filters ListFilters) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (ProductDTO, error)
	Create(ctx context.Context, input UpsertProductInput) (ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertProductInput) (ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a products service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "products repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

// List returns catalog products matching the filters, each carrying its
// effective price as of now.
func (s *service) List(ctx context.Context, filters ListFilters) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	now := s.now()
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, s.toDTO(&rows[i], now))
	}
	return dtos, nil
}

// Get returns one product by ID.
func (s *service) Get(ctx context.Context, id uuid.UUID) (ProductDTO, error) {
	if id == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return s.toDTO(product, s.now()), nil
}

// Create inserts a new catalog listing.
func (s *service) Create(ctx context.Context, input UpsertProductInput) (ProductDTO, error) {
	fields, err := s.validate(input)
	if err != nil {
		return ProductDTO{}, err
	}

	product := &models.Product{
		ID:              uuid.New(),
		Name:            fields.name,
		Category:        fields.category,
		Price:           fields.price,
		Description:     strings.TrimSpace(input.Description),
		Image:           strings.TrimSpace(input.Image),
		Images:          pq.StringArray(input.Images),
		DiscountPercent: input.DiscountPercent,
		DiscountStart:   input.DiscountStart,
		DiscountEnd:     input.DiscountEnd,
		AverageRating:   decimal.Zero,
		Features:        pq.StringArray(input.Features),
		Tag:             strings.TrimSpace(input.Tag),
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return s.toDTO(created, s.now()), nil
}

// Update replaces the mutable listing fields. Rating aggregates are owned by
// the reviews flow and never touched here.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertProductInput) (ProductDTO, error) {
	if id == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	fields, err := s.validate(input)
	if err != nil {
		return ProductDTO{}, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	product.Name = fields.name
	product.Category = fields.category
	product.Price = fields.price
	product.Description = strings.TrimSpace(input.Description)
	product.Image = strings.TrimSpace(input.Image)
	product.Images = pq.StringArray(input.Images)
	product.DiscountPercent = input.DiscountPercent
	product.DiscountStart = input.DiscountStart
	product.DiscountEnd = input.DiscountEnd
	product.Features = pq.StringArray(input.Features)
	product.Tag = strings.TrimSpace(input.Tag)

	if err := s.repo.Update(ctx, product); err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.toDTO(product, s.now()), nil
}

// Delete removes the listing. Existing cart lines and orders keep their
// snapshots and are unaffected.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

type validatedFields struct {
	name     string
	category string
	price    decimal.Decimal
}

func (s *service) validate(input UpsertProductInput) (validatedFields, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return validatedFields{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return validatedFields{}, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(input.Price))
	if err != nil {
		return validatedFields{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number")
	}
	if price.IsNegative() {
		return validatedFields{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return validatedFields{}, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}
	if input.DiscountStart != nil && input.DiscountEnd != nil && input.DiscountEnd.Before(*input.DiscountStart) {
		return validatedFields{}, pkgerrors.New(pkgerrors.CodeValidation, "discount end must not precede discount start")
	}
	return validatedFields{name: name, category: category, price: pricing.Round(price)}, nil
}

func (s *service) toDTO(product *models.Product, now time.Time) ProductDTO {
	return ProductDTO{
		ID:              product.ID,
		Name:            product.Name,
		Category:        product.Category,
		Price:           pricing.Round(product.Price),
		EffectivePrice:  pricing.EffectivePrice(product, now),
		DiscountPercent: product.DiscountPercent,
		DiscountActive:  pricing.DiscountActive(product, now),
		DiscountStart:   product.DiscountStart,
		DiscountEnd:     product.DiscountEnd,
		Description:     product.Description,
		Image:           product.Image,
		Images:          product.Images,
		AverageRating:   product.AverageRating,
		RatingCount:     product.RatingCount,
		Features:        product.Features,
		Tag:             product.Tag,
		CreatedAt:       product.CreatedAt,
	}
}
