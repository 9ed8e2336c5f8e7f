package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine holds the single line item a user has for a product. The unit price
// is a snapshot taken at first add and never re-fetched.
type CartLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserEmail string          `gorm:"column:user_email;not null;index:cart_lines_user_email_idx;uniqueIndex:cart_lines_user_product_key"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_lines_user_product_key"`
	Name      string          `gorm:"column:name;not null"`
	Image     string          `gorm:"column:image"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null;default:1"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	Variation string          `gorm:"column:variation"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
