// Package pricing computes bulk-discounted totals for a cart.
//
// All amounts are integer cents and discount rates are basis points
// (1/100 of a percent), so the cart view and the checkout summary always
// agree to the cent.
package pricing

import (
	"fmt"
	"math"

	"wholesale/internal/models"
)

// Tier is a bulk discount threshold. A tier applies when the total quantity
// of the order is at least MinQuantity.
type Tier struct {
	MinQuantity int
	RateBP      int64
}

// tiers is ordered from highest threshold to lowest; the first match wins.
var tiers = []Tier{
	{MinQuantity: 500, RateBP: 2000},
	{MinQuantity: 300, RateBP: 1500},
	{MinQuantity: 200, RateBP: 1000},
	{MinQuantity: 100, RateBP: 500},
}

const basisPoints = 10000

// Breakdown is the priced view of a cart.
type Breakdown struct {
	TotalQuantity   int   `json:"total_quantity"`
	SubtotalCents   int64 `json:"subtotal_cents"`
	DiscountRateBP  int64 `json:"discount_rate_bp"`
	DiscountCents   int64 `json:"discount_cents"`
	GrandTotalCents int64 `json:"grand_total_cents"`

	// Overflow is set when the cart cannot be priced in int64 cents. The
	// money fields are zero in that case and checkout must refuse the cart.
	Overflow bool `json:"overflow,omitempty"`
}

// DiscountRate returns the discount as a fraction, e.g. 0.10.
func (b Breakdown) DiscountRate() float64 {
	return float64(b.DiscountRateBP) / basisPoints
}

// DiscountPercent returns the discount as whole percent, e.g. 10.
func (b Breakdown) DiscountPercent() int64 {
	return b.DiscountRateBP / 100
}

// Tiers returns a copy of the discount table, highest threshold first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// RateFor returns the discount rate in basis points for a total quantity.
func RateFor(totalQuantity int) int64 {
	for _, t := range tiers {
		if totalQuantity >= t.MinQuantity {
			return t.RateBP
		}
	}
	return 0
}

// NextTier reports the next tier above the one totalQuantity currently
// qualifies for and how many more units are needed to reach it. ok is false
// when the highest tier is already reached.
func NextTier(totalQuantity int) (next Tier, unitsNeeded int, ok bool) {
	for i := len(tiers) - 1; i >= 0; i-- {
		if totalQuantity < tiers[i].MinQuantity {
			return tiers[i], tiers[i].MinQuantity - totalQuantity, true
		}
	}
	return Tier{}, 0, false
}

// Compute prices the given cart items. Lines with a negative price or
// quantity, and totals that do not fit in an int64, mark the breakdown as
// Overflow instead of wrapping around.
func Compute(items []models.CartItem) Breakdown {
	var b Breakdown
	for _, item := range items {
		line, ok := item.LineTotal()
		if !ok || b.TotalQuantity > math.MaxInt-item.Quantity || b.SubtotalCents > math.MaxInt64-line {
			return overflowed(items)
		}
		b.TotalQuantity += item.Quantity
		b.SubtotalCents += line
	}
	b.DiscountRateBP = RateFor(b.TotalQuantity)
	b.DiscountCents = applyRate(b.SubtotalCents, b.DiscountRateBP)
	b.GrandTotalCents = b.SubtotalCents - b.DiscountCents
	return b
}

// overflowed keeps a saturated quantity for the cart badge and drops the
// money fields.
func overflowed(items []models.CartItem) Breakdown {
	b := Breakdown{Overflow: true}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if b.TotalQuantity > math.MaxInt-item.Quantity {
			b.TotalQuantity = math.MaxInt
			break
		}
		b.TotalQuantity += item.Quantity
	}
	return b
}

// applyRate returns amount*rate rounded half up to the nearest cent. The
// amount is split at basisPoints so the multiplication cannot overflow for
// rates up to 100%.
func applyRate(amountCents, rateBP int64) int64 {
	if amountCents <= 0 || rateBP <= 0 {
		return 0
	}
	whole, rest := amountCents/basisPoints, amountCents%basisPoints
	return whole*rateBP + (rest*rateBP+basisPoints/2)/basisPoints
}

// FormatCents renders an amount with two decimal places, e.g. 2250.00.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
