package models

import "math"

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 100000

// CartItem is one line of a cart. IDs are unique within a cart and
// Quantity stays within [1, MaxLineQuantity].
type CartItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

// LineTotal is price times quantity. ok is false when either factor is
// negative or the product does not fit in an int64.
func (i CartItem) LineTotal() (cents int64, ok bool) {
	if i.PriceCents < 0 || i.Quantity < 0 {
		return 0, false
	}
	q := int64(i.Quantity)
	if q != 0 && i.PriceCents > math.MaxInt64/q {
		return 0, false
	}
	return i.PriceCents * q, true
}

// LineTotalCents is LineTotal saturated at math.MaxInt64. Invalid lines
// yield 0.
func (i CartItem) LineTotalCents() int64 {
	cents, ok := i.LineTotal()
	if !ok {
		if i.PriceCents < 0 || i.Quantity < 0 {
			return 0
		}
		return math.MaxInt64
	}
	return cents
}
