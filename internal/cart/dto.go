package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLineDTO is one line of a user's cart.
type CartLineDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Variation string          `json:"variation,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// CartDTO wraps the lines together with the running subtotal.
type CartDTO struct {
	Lines    []CartLineDTO   `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// AddItemInput carries the add-to-cart payload.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1,lte=999"`
	Variation string    `json:"variation" validate:"max=120"`
}

// UpdateQuantityInput carries the set-quantity payload. Zero and negative
// quantities are accepted and treated as removal.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"lte=999"`
}
