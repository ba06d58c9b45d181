package services

import (
	"context"

	"wholesale/internal/view"
)

// ViewService re-renders the page fragments from the stored state.
type ViewService struct {
	checkout *CheckoutService
}

// NewViewService creates a new ViewService.
func NewViewService(checkout *CheckoutService) *ViewService {
	return &ViewService{checkout: checkout}
}

// Sync reads the client context's state and renders it.
func (s *ViewService) Sync(ctx context.Context, clientID string) (*view.Fragments, error) {
	c, err := s.checkout.Evaluate(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return view.Render(view.State{
		LoggedIn:       c.Email != "",
		Email:          c.Email,
		Items:          c.Items,
		Pricing:        c.Pricing,
		CheckoutReady:  c.State == CheckoutReady,
		BlockedReason:  string(c.Reason),
		BlockedMessage: c.Reason.Message(),
	})
}
