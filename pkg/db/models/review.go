package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Review is an append-only customer rating tied to a product.
type Review struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index"`
	UserEmail string         `gorm:"column:user_email;not null"`
	UserName  string         `gorm:"column:user_name;not null"`
	Rating    int            `gorm:"column:rating;not null"`
	Comment   string         `gorm:"column:comment"`
	Images    pq.StringArray `gorm:"column:images;type:text[]"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime;index"`
}
