package models

import "time"

// OrderConfirmation is the simulated result of a confirmed checkout.
// It is returned to the caller and published as an event, never stored.
type OrderConfirmation struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Items           []CartItem `json:"items"`
	TotalQuantity   int        `json:"total_quantity"`
	SubtotalCents   int64      `json:"subtotal_cents"`
	DiscountRateBP  int64      `json:"discount_rate_bp"`
	DiscountCents   int64      `json:"discount_cents"`
	GrandTotalCents int64      `json:"grand_total_cents"`
	PlacedAt        time.Time  `json:"placed_at"`
}
