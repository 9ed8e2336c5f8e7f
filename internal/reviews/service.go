package reviews

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
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

// ServiceParams groups dependencies for the reviews service.
type ServiceParams struct {
	Repo        Repository
	ProductRepo products.Repository
	Tx          txRunner
}

// Service exposes review submission and product review reads.
type Service interface {
	Create(ctx context.Context, userEmail, userName string, input CreateReviewInput) (ReviewDTO, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) (ProductReviewsDTO, error)
}

type service struct {
	repo        Repository
	productRepo products.Repository
	tx          txRunner
}

// NewService builds a reviews service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviews repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	return &service{
		repo:        params.Repo,
		productRepo: params.ProductRepo,
		tx:          params.Tx,
	}, nil
}

// Create appends the review and recomputes the product aggregate inside one
// transaction. The product row is locked so concurrent submissions cannot
// interleave their recomputations.
func (s *service) Create(ctx context.Context, userEmail, userName string, input CreateReviewInput) (ReviewDTO, error) {
	email := strings.ToLower(strings.TrimSpace(userEmail))
	if email == "" {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user email is required")
	}
	if input.ProductID == uuid.Nil {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: input.ProductID,
		UserEmail: email,
		UserName:  strings.TrimSpace(userName),
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
		Images:    pq.StringArray(input.Images),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		reviewRepo := s.repo.WithTx(tx)

		product, err := productRepo.FindByIDForUpdate(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if _, err := reviewRepo.Create(ctx, review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}

		total, count, err := reviewRepo.SumAndCountByProduct(ctx, input.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
		}

		average := decimal.Zero
		if count > 0 {
			average = pricing.RoundRating(decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(count))))
		}
		if err := productRepo.UpdateRating(ctx, product.ID, average.String(), count); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
		}
		return nil
	})
	if err != nil {
		return ReviewDTO{}, err
	}
	return toDTO(review), nil
}

// ListByProduct returns the product's reviews newest first, plus the stored
// aggregate.
func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) (ProductReviewsDTO, error) {
	if productID == uuid.Nil {
		return ProductReviewsDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductReviewsDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return ProductReviewsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return ProductReviewsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	dto := ProductReviewsDTO{
		Reviews:       make([]ReviewDTO, 0, len(rows)),
		AverageRating: product.AverageRating,
		RatingCount:   product.RatingCount,
	}
	for i := range rows {
		dto.Reviews = append(dto.Reviews, toDTO(&rows[i]))
	}
	return dto, nil
}

func toDTO(review *models.Review) ReviewDTO {
	return ReviewDTO{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserEmail: review.UserEmail,
		UserName:  review.UserName,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Images:    review.Images,
		CreatedAt: review.CreatedAt,
	}
}
