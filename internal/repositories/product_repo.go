package repositories

import (
	"errors"

	"wholesale/internal/models"
)

// ErrProductNotFound is returned when no catalog entry matches an ID.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
