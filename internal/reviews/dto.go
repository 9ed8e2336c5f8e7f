package reviews

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReviewDTO is the public representation of a review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserEmail string    `json:"user_email"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Images    []string  `json:"images,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductReviewsDTO wraps a product's reviews plus the current aggregate.
type ProductReviewsDTO struct {
	Reviews       []ReviewDTO     `json:"reviews"`
	AverageRating decimal.Decimal `json:"average_rating"`
	RatingCount   int             `json:"rating_count"`
}

// CreateReviewInput carries the submit-review payload.
type CreateReviewInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string    `json:"comment" validate:"max=5000"`
	Images    []string  `json:"images" validate:"max=5,dive,max=500"`
}
