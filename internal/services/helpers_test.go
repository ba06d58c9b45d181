package services_test

import (
	"testing"

	"wholesale/internal/logger"
	"wholesale/internal/repositories"
	"wholesale/internal/services"

	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store    *repositories.MemoryKVStore
	state    *repositories.StateRepository
	auth     *services.AuthService
	cart     *services.CartService
	checkout *services.CheckoutService
}

func newFixture(t *testing.T, publisher services.OrderPublisher) *fixture {
	t.Helper()
	log := logger.Nop()
	store := repositories.NewMemoryKVStore()
	state := repositories.NewStateRepository(store, log)
	auth := services.NewAuthService(state, bcrypt.MinCost, log)
	return &fixture{
		store:    store,
		state:    state,
		auth:     auth,
		cart:     services.NewCartService(state, auth, log),
		checkout: services.NewCheckoutService(state, publisher, log),
	}
}
