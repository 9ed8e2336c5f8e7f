// Package pricing holds the money math shared by catalog, cart, and checkout.
// All amounts are whole currency units rounded half-up to two decimals.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmtruong/shophub-backend/pkg/db/models"
)

var oneHundred = decimal.NewFromInt(100)

// Round normalizes an amount to two decimal places using half-up rounding.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// RoundRating normalizes a rating average to one decimal place.
func RoundRating(avg decimal.Decimal) decimal.Decimal {
	return avg.Round(1)
}

// DiscountActive reports whether the product's discount window covers the
// given instant. Both window bounds must be set and the boundaries are
// inclusive. Percent values outside (0, 100] never activate.
func DiscountActive(p *models.Product, now time.Time) bool {
	if p == nil {
		return false
	}
	if p.DiscountPercent <= 0 || p.DiscountPercent > 100 {
		return false
	}
	if p.DiscountStart == nil || p.DiscountEnd == nil {
		return false
	}
	if now.Before(*p.DiscountStart) || now.After(*p.DiscountEnd) {
		return false
	}
	return true
}

// EffectivePrice returns the price a buyer pays right now: the base price
// reduced by the discount percent when the window is active, otherwise the
// base price unchanged.
func EffectivePrice(p *models.Product, now time.Time) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if !DiscountActive(p, now) {
		return Round(p.Price)
	}
	pct := decimal.NewFromInt(int64(p.DiscountPercent))
	factor := oneHundred.Sub(pct).Div(oneHundred)
	return Round(p.Price.Mul(factor))
}

// LineTotal computes quantity times unit price, rounded.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return Round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// Tax applies the percent rate to the line subtotal, rounded.
func Tax(subtotal decimal.Decimal, ratePercent decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Mul(ratePercent.Div(oneHundred)))
}
