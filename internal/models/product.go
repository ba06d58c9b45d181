package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog entry that can be added to a cart.
type Product struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(64)" validate:"omitempty,max=64"`
	Name        string         `json:"name" validate:"required,min=2,max=100"`
	Description string         `json:"description" validate:"omitempty,max=500"`
	PriceCents  int64          `json:"price_cents" validate:"gte=0,lte=100000000"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// CartProduct is the payload an add-to-cart control carries: product
// identity, display name and unit price.
type CartProduct struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// AsCartProduct returns the add-to-cart payload for the product.
func (p Product) AsCartProduct() CartProduct {
	return CartProduct{ID: p.ID, Name: p.Name, PriceCents: p.PriceCents}
}
