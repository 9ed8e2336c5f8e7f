package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/nmtruong/shophub-backend/pkg/db/models"
)

func discountedProduct(price string, percent int, start, end time.Time) *models.Product {
	return &models.Product{
		Price:           decimal.RequireFromString(price),
		DiscountPercent: percent,
		DiscountStart:   &start,
		DiscountEnd:     &end,
	}
}

func TestEffectivePriceAppliesActiveDiscount(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	p := discountedProduct("799.00", 10, now.Add(-time.Hour), now.Add(time.Hour))

	got := EffectivePrice(p, now)
	assert.True(t, got.Equal(decimal.RequireFromString("719.10")), "got %s", got)
}

func TestEffectivePriceWindowBoundariesInclusive(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	p := discountedProduct("100.00", 25, start, end)

	assert.True(t, EffectivePrice(p, start).Equal(decimal.RequireFromString("75.00")))
	assert.True(t, EffectivePrice(p, end).Equal(decimal.RequireFromString("75.00")))
	assert.True(t, EffectivePrice(p, start.Add(-time.Second)).Equal(decimal.RequireFromString("100.00")))
	assert.True(t, EffectivePrice(p, end.Add(time.Second)).Equal(decimal.RequireFromString("100.00")))
}

func TestEffectivePriceIgnoresIncompleteWindow(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Hour)

	p := &models.Product{
		Price:           decimal.RequireFromString("50.00"),
		DiscountPercent: 20,
		DiscountStart:   &start,
	}
	assert.True(t, EffectivePrice(p, now).Equal(decimal.RequireFromString("50.00")))
}

func TestEffectivePriceIgnoresOutOfRangePercent(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	for _, pct := range []int{0, -5, 101} {
		p := discountedProduct("80.00", pct, start, end)
		assert.True(t, EffectivePrice(p, now).Equal(decimal.RequireFromString("80.00")), "percent %d", pct)
	}

	full := discountedProduct("80.00", 100, start, end)
	assert.True(t, EffectivePrice(full, now).Equal(decimal.Zero))
}

func TestEffectivePriceRoundsHalfUp(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	// 33.33 * 0.85 = 28.3305 -> 28.33; 10.01 * 0.75 = 7.5075 -> 7.51
	p := discountedProduct("33.33", 15, start, end)
	assert.True(t, EffectivePrice(p, now).Equal(decimal.RequireFromString("28.33")))

	p = discountedProduct("10.01", 25, start, end)
	assert.True(t, EffectivePrice(p, now).Equal(decimal.RequireFromString("7.51")))
}

func TestLineTotalAndTax(t *testing.T) {
	unit := decimal.RequireFromString("719.10")
	subtotal := LineTotal(unit, 3)
	assert.True(t, subtotal.Equal(decimal.RequireFromString("2157.30")), "got %s", subtotal)

	tax := Tax(subtotal, decimal.NewFromInt(8))
	assert.True(t, tax.Equal(decimal.RequireFromString("172.58")), "got %s", tax)
}

func TestRoundRating(t *testing.T) {
	avg := decimal.NewFromInt(14).Div(decimal.NewFromInt(4))
	assert.Equal(t, "3.5", RoundRating(avg).String())
}
