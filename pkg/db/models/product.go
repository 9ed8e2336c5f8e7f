package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents the canonical catalog listing.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Category        string          `gorm:"column:category;not null;index"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Description     string          `gorm:"column:description"`
	Image           string          `gorm:"column:image"`
	Images          pq.StringArray  `gorm:"column:images;type:text[]"`
	DiscountPercent int             `gorm:"column:discount_percent;not null;default:0"`
	DiscountStart   *time.Time      `gorm:"column:discount_start"`
	DiscountEnd     *time.Time      `gorm:"column:discount_end"`
	AverageRating   decimal.Decimal `gorm:"column:average_rating;type:numeric(3,1);not null;default:0"`
	RatingCount     int             `gorm:"column:rating_count;not null;default:0"`
	Features        pq.StringArray  `gorm:"column:features;type:text[]"`
	Tag             string          `gorm:"column:tag"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
