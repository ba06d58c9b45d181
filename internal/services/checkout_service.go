package services

import (
	"context"
	"fmt"
	"time"

	"wholesale/internal/logger"
	"wholesale/internal/models"
	"wholesale/internal/pricing"
	"wholesale/internal/repositories"

	"github.com/google/uuid"
)

// MinimumOrderQuantity is the smallest total quantity accepted at checkout.
// It sits below the first discount tier, so 50-99 units bill at full price.
const MinimumOrderQuantity = 50

// CheckoutState is either ready or blocked.
type CheckoutState string

const (
	CheckoutReady   CheckoutState = "ready"
	CheckoutBlocked CheckoutState = "blocked"
)

// BlockReason says why checkout cannot proceed.
type BlockReason string

const (
	ReasonNone          BlockReason = ""
	ReasonNotLoggedIn   BlockReason = "not_logged_in"
	ReasonEmptyCart     BlockReason = "empty_cart"
	ReasonOrderTooLarge BlockReason = "order_too_large"
	ReasonBelowMinimum  BlockReason = "below_minimum"
)

// Message is the user-facing text for the reason.
func (r BlockReason) Message() string {
	switch r {
	case ReasonNotLoggedIn:
		return "Please log in to proceed to checkout."
	case ReasonEmptyCart:
		return "Your cart is empty."
	case ReasonBelowMinimum:
		return fmt.Sprintf("Minimum wholesale order is %d units.", MinimumOrderQuantity)
	case ReasonOrderTooLarge:
		return "This order is too large to process. Please reduce quantities."
	default:
		return ""
	}
}

// CheckoutBlockedError is returned by Submit when checkout is blocked.
type CheckoutBlockedError struct {
	Reason BlockReason
}

func (e *CheckoutBlockedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCheckoutBlocked, e.Reason)
}

func (e *CheckoutBlockedError) Unwrap() error {
	return ErrCheckoutBlocked
}

// Checkout is the evaluated checkout for a client context.
type Checkout struct {
	State   CheckoutState     `json:"state"`
	Reason  BlockReason       `json:"reason,omitempty"`
	Email   string            `json:"email,omitempty"`
	Items   []models.CartItem `json:"items"`
	Pricing pricing.Breakdown `json:"pricing"`
}

// OrderPublisher announces confirmed orders.
type OrderPublisher interface {
	PublishOrderPlaced(order models.OrderConfirmation) error
}

// CheckoutService evaluates and submits checkouts.
type CheckoutService struct {
	state     *repositories.StateRepository
	publisher OrderPublisher // optional
	log       *logger.Logger
	now       func() time.Time
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil.
func NewCheckoutService(state *repositories.StateRepository, publisher OrderPublisher, log *logger.Logger) *CheckoutService {
	return &CheckoutService{
		state:     state,
		publisher: publisher,
		log:       log.With("service", "CheckoutService"),
		now:       time.Now,
	}
}

// Evaluate reports whether checkout can proceed and, if so, the priced order.
func (s *CheckoutService) Evaluate(ctx context.Context, clientID string) (*Checkout, error) {
	session, err := s.state.Session(ctx, clientID)
	if err != nil {
		return nil, err
	}
	items, err := s.state.Cart(ctx, clientID)
	if err != nil {
		return nil, err
	}

	c := &Checkout{
		State:   CheckoutReady,
		Items:   items,
		Pricing: pricing.Compute(items),
	}
	if session != nil {
		c.Email = session.Email
	}

	switch {
	case session == nil:
		c.Reason = ReasonNotLoggedIn
	case len(items) == 0:
		c.Reason = ReasonEmptyCart
	case c.Pricing.Overflow:
		c.Reason = ReasonOrderTooLarge
	case c.Pricing.TotalQuantity < MinimumOrderQuantity:
		c.Reason = ReasonBelowMinimum
	}
	if c.Reason != ReasonNone {
		c.State = CheckoutBlocked
	}
	return c, nil
}

// Submit places the order when checkout is ready and the buyer confirmed.
// The cart is cleared; the order itself is not persisted.
func (s *CheckoutService) Submit(ctx context.Context, clientID string, confirmed bool) (*models.OrderConfirmation, error) {
	c, err := s.Evaluate(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c.State == CheckoutBlocked {
		return nil, &CheckoutBlockedError{Reason: c.Reason}
	}
	if !confirmed {
		return nil, ErrNotConfirmed
	}

	if err := s.state.ClearCart(ctx, clientID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	order := models.OrderConfirmation{
		ID:              uuid.New().String(),
		Email:           c.Email,
		Items:           c.Items,
		TotalQuantity:   c.Pricing.TotalQuantity,
		SubtotalCents:   c.Pricing.SubtotalCents,
		DiscountRateBP:  c.Pricing.DiscountRateBP,
		DiscountCents:   c.Pricing.DiscountCents,
		GrandTotalCents: c.Pricing.GrandTotalCents,
		PlacedAt:        s.now().UTC(),
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(order); err != nil {
			s.log.Warn("failed to publish order placed event", "order_id", order.ID, "error", err)
		}
	} else {
		s.log.Debug("order publisher not configured, skipping event", "order_id", order.ID)
	}

	s.log.Info("order placed", "client_id", clientID, "order_id", order.ID,
		"total_quantity", order.TotalQuantity, "grand_total", pricing.FormatCents(order.GrandTotalCents))
	return &order, nil
}
