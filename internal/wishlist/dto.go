package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WishlistItemDTO is one liked product with its display snapshot.
type WishlistItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AddItemInput carries the like payload.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}
