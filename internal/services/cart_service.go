package services

import (
	"context"
	"fmt"

	"wholesale/internal/logger"
	"wholesale/internal/models"
	"wholesale/internal/pricing"
	"wholesale/internal/repositories"
)

// CartService handles cart mutations. Adding requires a session; removing
// and changing quantities do not.
type CartService struct {
	state *repositories.StateRepository
	auth  *AuthService
	log   *logger.Logger
}

// NewCartService creates a new CartService.
func NewCartService(state *repositories.StateRepository, auth *AuthService, log *logger.Logger) *CartService {
	return &CartService{
		state: state,
		auth:  auth,
		log:   log.With("service", "CartService"),
	}
}

// AddResult describes the outcome of an add-to-cart.
type AddResult struct {
	Item  models.CartItem `json:"item"`
	Count int             `json:"count"`
}

// AddToCart adds one unit of product. Without a session it returns
// ErrNotLoggedIn and leaves the cart record untouched.
func (s *CartService) AddToCart(ctx context.Context, clientID string, product models.CartProduct) (*AddResult, error) {
	loggedIn, err := s.auth.IsLoggedIn(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !loggedIn {
		return nil, ErrNotLoggedIn
	}
	if product.ID == "" || product.PriceCents < 0 {
		return nil, fmt.Errorf("%w: id %q price %d", ErrInvalidProduct, product.ID, product.PriceCents)
	}

	items, err := s.state.Cart(ctx, clientID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(items, product.ID)
	if idx >= 0 {
		items[idx].Quantity = adjustQuantity(items[idx].Quantity, 1)
	} else {
		items = append(items, models.CartItem{
			ID:         product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   1,
		})
		idx = len(items) - 1
	}

	if err := s.state.SaveCart(ctx, clientID, items); err != nil {
		return nil, err
	}
	s.log.Debug("item added to cart", "client_id", clientID, "product_id", product.ID, "quantity", items[idx].Quantity)
	return &AddResult{Item: items[idx], Count: countOf(items)}, nil
}

// RemoveFromCart deletes the item with the given id, if present.
func (s *CartService) RemoveFromCart(ctx context.Context, clientID, id string) ([]models.CartItem, error) {
	items, err := s.state.Cart(ctx, clientID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if err := s.state.SaveCart(ctx, clientID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// ChangeQuantity adjusts an item's quantity by delta, never going below 1 or
// above models.MaxLineQuantity. Unknown ids are ignored.
func (s *CartService) ChangeQuantity(ctx context.Context, clientID, id string, delta int) ([]models.CartItem, error) {
	items, err := s.state.Cart(ctx, clientID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(items, id)
	if idx < 0 {
		return items, nil
	}
	items[idx].Quantity = adjustQuantity(items[idx].Quantity, delta)
	if err := s.state.SaveCart(ctx, clientID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Items returns the cart contents.
func (s *CartService) Items(ctx context.Context, clientID string) ([]models.CartItem, error) {
	return s.state.Cart(ctx, clientID)
}

// Summary is the cart as reported to the API. Pricing is nil without a
// session, matching the view, which hides prices from logged-out visitors.
type Summary struct {
	Items   []models.CartItem  `json:"items"`
	Count   int                `json:"count"`
	Pricing *pricing.Breakdown `json:"pricing,omitempty"`
}

// Summary returns the cart contents, count and, when signed in, pricing.
func (s *CartService) Summary(ctx context.Context, clientID string) (*Summary, error) {
	loggedIn, err := s.auth.IsLoggedIn(ctx, clientID)
	if err != nil {
		return nil, err
	}
	items, err := s.state.Cart(ctx, clientID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Items: items, Count: countOf(items)}
	if loggedIn {
		b := pricing.Compute(items)
		sum.Pricing = &b
	}
	return sum, nil
}

// CartCount returns the sum of all item quantities.
func (s *CartService) CartCount(ctx context.Context, clientID string) (int, error) {
	items, err := s.state.Cart(ctx, clientID)
	if err != nil {
		return 0, err
	}
	return countOf(items), nil
}

// adjustQuantity returns quantity+delta clamped to [1, models.MaxLineQuantity]
// without overflowing for any delta.
func adjustQuantity(quantity, delta int) int {
	if quantity < 1 {
		quantity = 1
	} else if quantity > models.MaxLineQuantity {
		quantity = models.MaxLineQuantity
	}
	switch {
	case delta > 0 && delta > models.MaxLineQuantity-quantity:
		return models.MaxLineQuantity
	case delta < 0 && delta < 1-quantity:
		return 1
	}
	return quantity + delta
}

func indexOf(items []models.CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func countOf(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
