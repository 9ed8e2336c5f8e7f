package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nmtruong/shophub-backend/pkg/enums"
)

// Order is an immutable per-line snapshot created at checkout. Only the status
// column is mutated afterwards.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID         *uuid.UUID           `gorm:"column:group_id;type:uuid;index"`
	ProductID       uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string               `gorm:"column:product_name;not null"`
	Quantity        int                  `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal      `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Price           decimal.Decimal      `gorm:"column:price;type:numeric(12,2);not null"`
	UserEmail       string               `gorm:"column:user_email;not null;index"`
	UserName        string               `gorm:"column:user_name;not null"`
	Phone           string               `gorm:"column:phone;not null"`
	ShippingAddress string               `gorm:"column:shipping_address;not null"`
	ShippingMethod  enums.ShippingMethod `gorm:"column:shipping_method;type:text;not null;default:'standard'"`
	PaymentMethod   string               `gorm:"column:payment_method;not null"`
	ShippingCost    decimal.Decimal      `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Tax             decimal.Decimal      `gorm:"column:tax;type:numeric(12,2);not null"`
	TotalAmount     decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Variation       string               `gorm:"column:variation"`
	Status          enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'Ordered';index"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
