package wishlist

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/internal/products"
	"github.com/nmtruong/shophub-backend/pkg/db"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo        Repository
	ProductRepo products.Repository
}

// Service exposes business rules for wishlist management.
type Service interface {
	List(ctx context.Context, userEmail string) ([]WishlistItemDTO, error)
	AddItem(ctx context.Context, userEmail string, input AddItemInput) error
	RemoveItem(ctx context.Context, userEmail string, productID uuid.UUID) error
}

type service struct {
	repo        Repository
	productRepo products.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: params.Repo, productRepo: params.ProductRepo}, nil
}

// List returns the user's liked products, most recent first.
func (s *service) List(ctx context.Context, userEmail string) ([]WishlistItemDTO, error) {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByUser(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	dtos := make([]WishlistItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, WishlistItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
			CreatedAt: item.CreatedAt,
		})
	}
	return dtos, nil
}

// AddItem ensures the product exists and likes it. A repeat like is a no-op.
func (s *service) AddItem(ctx context.Context, userEmail string, input AddItemInput) error {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return err
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	item := &models.WishlistItem{
		ID:        uuid.New(),
		UserEmail: email,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
	}
	if _, err := s.repo.Create(ctx, item); err != nil {
		if db.IsUniqueViolation(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return nil
}

// RemoveItem drops the wishlist entry regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, userEmail string, productID uuid.UUID) error {
	email, err := normalizeEmail(userEmail)
	if err != nil {
		return err
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.repo.Delete(ctx, email, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user email is required")
	}
	return trimmed, nil
}
