package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderGroup ties the per-line orders of one checkout together under a
// generated session identifier.
type OrderGroup struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserEmail    string          `gorm:"column:user_email;not null;index"`
	ShippingCost decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	ItemCount    int             `gorm:"column:item_count;not null"`
	Orders       []Order         `gorm:"foreignKey:GroupID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
