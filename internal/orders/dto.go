package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nmtruong/shophub-backend/pkg/enums"
)

// CheckoutInput carries the checkout payload. Line items come from the
// server-side cart unless a buy-now item is supplied, in which case that
// single item is purchased and the cart is left alone.
type CheckoutInput struct {
	UserName        string           `json:"user_name" validate:"required,min=1,max=200"`
	Phone           string           `json:"phone" validate:"required,min=5,max=40"`
	ShippingAddress string           `json:"shipping_address" validate:"required,min=5,max=500"`
	ShippingMethod  string           `json:"shipping_method" validate:"required"`
	PaymentMethod   string           `json:"payment_method" validate:"required,max=60"`
	Item            *BuyNowItemInput `json:"item,omitempty"`
}

// BuyNowItemInput purchases one product directly, bypassing the cart.
type BuyNowItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1,lte=999"`
	Variation string    `json:"variation,omitempty" validate:"max=100"`
}

// OrderDTO is one per-line order snapshot.
type OrderDTO struct {
	ID              uuid.UUID            `json:"id"`
	GroupID         *uuid.UUID           `json:"group_id,omitempty"`
	ProductID       uuid.UUID            `json:"product_id"`
	ProductName     string               `json:"product_name"`
	Quantity        int                  `json:"quantity"`
	UnitPrice       decimal.Decimal      `json:"unit_price"`
	Price           decimal.Decimal      `json:"price"`
	Tax             decimal.Decimal      `json:"tax"`
	ShippingCost    decimal.Decimal      `json:"shipping_cost"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	UserEmail       string               `json:"user_email"`
	UserName        string               `json:"user_name"`
	Phone           string               `json:"phone"`
	ShippingAddress string               `json:"shipping_address"`
	ShippingMethod  enums.ShippingMethod `json:"shipping_method"`
	PaymentMethod   string               `json:"payment_method"`
	Variation       string               `json:"variation,omitempty"`
	Status          enums.OrderStatus    `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
}

// CheckoutResultDTO aggregates the orders created by one checkout. Buy-now
// purchases create a single order with no group.
type CheckoutResultDTO struct {
	GroupID      *uuid.UUID      `json:"group_id,omitempty"`
	Orders       []OrderDTO      `json:"orders"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
}

// AdminListFilters describe the inputs supported by the admin orders list.
type AdminListFilters struct {
	Status    *enums.OrderStatus
	UserEmail string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// OrderPageDTO wraps paginated orders plus the next page cursor.
type OrderPageDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// UpdateStatusInput carries the admin status change payload.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}
