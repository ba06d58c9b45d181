package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"wholesale/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository keeps the catalog in process memory. It backs the
// memory and redis store drivers, which have no SQL database for the catalog.
type MemoryProductRepository struct {
	mu      sync.RWMutex
	catalog map[string]models.Product
	now     func() time.Time
}

// NewMemoryProductRepository returns an empty catalog.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		catalog: make(map[string]models.Product),
		now:     time.Now,
	}
}

func (r *MemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.catalog))
	for _, p := range r.catalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	p, ok := r.catalog[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return &p, nil
}

// Create assigns a uuid when product.ID is empty. Duplicate IDs are rejected.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	stamp := r.now()
	product.CreatedAt, product.UpdatedAt = stamp, stamp

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.catalog[product.ID]; dup {
		return fmt.Errorf("failed to create product: ID %s already exists", product.ID)
	}
	r.catalog[product.ID] = *product
	return nil
}

// Update rewrites name, description and price, mirroring the SQL repository.
func (r *MemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.catalog[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrProductNotFound)
	}
	stored.Name = product.Name
	stored.Description = product.Description
	stored.PriceCents = product.PriceCents
	stored.UpdatedAt = r.now()
	r.catalog[product.ID] = stored
	return nil
}

func (r *MemoryProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.catalog[id]; !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	delete(r.catalog, id)
	return nil
}
