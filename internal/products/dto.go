package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilters describe the inputs supported by the catalog list.
type ListFilters struct {
	Category string
	Query    string
	Sort     string
}

// Sort options accepted by the catalog list.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

// ProductDTO is the catalog representation returned to clients. The effective
// price reflects any discount active at read time.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	EffectivePrice  decimal.Decimal `json:"effective_price"`
	DiscountPercent int             `json:"discount_percent,omitempty"`
	DiscountActive  bool            `json:"discount_active"`
	DiscountStart   *time.Time      `json:"discount_start,omitempty"`
	DiscountEnd     *time.Time      `json:"discount_end,omitempty"`
	Description     string          `json:"description,omitempty"`
	Image           string          `json:"image,omitempty"`
	Images          []string        `json:"images,omitempty"`
	AverageRating   decimal.Decimal `json:"average_rating"`
	RatingCount     int             `json:"rating_count"`
	Features        []string        `json:"features,omitempty"`
	Tag             string          `json:"tag,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// UpsertProductInput carries the admin create/update payload.
type UpsertProductInput struct {
	Name            string     `json:"name" validate:"required,min=1,max=200"`
	Category        string     `json:"category" validate:"required,min=1,max=120"`
	Price           string     `json:"price" validate:"required"`
	Description     string     `json:"description" validate:"max=5000"`
	Image           string     `json:"image" validate:"max=500"`
	Images          []string   `json:"images" validate:"max=10,dive,max=500"`
	DiscountPercent int        `json:"discount_percent" validate:"gte=0,lte=100"`
	DiscountStart   *time.Time `json:"discount_start"`
	DiscountEnd     *time.Time `json:"discount_end"`
	Features        []string   `json:"features" validate:"max=20,dive,max=300"`
	Tag             string     `json:"tag" validate:"max=60"`
}
