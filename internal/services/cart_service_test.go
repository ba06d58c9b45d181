package services_test

import (
	"context"
	"math"
	"testing"

	"wholesale/internal/models"
	"wholesale/internal/pricing"
	"wholesale/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var widget = models.CartProduct{ID: "widget", Name: "Widget", PriceCents: 1000}

func loggedInFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, nil)
	_, err := f.auth.Register(context.Background(), "c1", validUser())
	require.NoError(t, err)
	return f
}

func TestCartService_AddRequiresLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.cart.AddToCart(ctx, "c1", widget)
	assert.ErrorIs(t, err, services.ErrNotLoggedIn)

	_, err = f.store.Get(ctx, "c1:cart")
	assert.Error(t, err, "the cart record is never written")
}

func TestCartService_AddIncrementsExisting(t *testing.T) {
	ctx := context.Background()
	f := loggedInFixture(t)

	res, err := f.cart.AddToCart(ctx, "c1", widget)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Item.Quantity)
	assert.Equal(t, 1, res.Count)

	res, err = f.cart.AddToCart(ctx, "c1", widget)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Item.Quantity)

	res, err = f.cart.AddToCart(ctx, "c1", models.CartProduct{ID: "gadget", Name: "Gadget", PriceCents: 250})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)

	items, err := f.cart.Items(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "widget", items[0].ID)
	assert.Equal(t, "gadget", items[1].ID)
}

func TestCartService_AddRejectsInvalidProduct(t *testing.T) {
	ctx := context.Background()
	f := loggedInFixture(t)

	_, err := f.cart.AddToCart(ctx, "c1", models.CartProduct{Name: "No ID"})
	assert.ErrorIs(t, err, services.ErrInvalidProduct)
	_, err = f.cart.AddToCart(ctx, "c1", models.CartProduct{ID: "neg", PriceCents: -1})
	assert.ErrorIs(t, err, services.ErrInvalidProduct)
}

func TestCartService_ChangeQuantityFloorsAtOne(t *testing.T) {
	ctx := context.Background()
	f := loggedInFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.cart.AddToCart(ctx, "c1", widget)
		require.NoError(t, err)
	}

	items, err := f.cart.ChangeQuantity(ctx, "c1", "widget", -100)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	items, err = f.cart.ChangeQuantity(ctx, "c1", "widget", 49)
	require.NoError(t, err)
	assert.Equal(t, 50, items[0].Quantity)

	count, err := f.cart.CartCount(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

func TestCartService_ChangeQuantityUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	f := loggedInFixture(t)

	_, err := f.cart.AddToCart(ctx, "c1", widget)
	require.NoError(t, err)

	items, err := f.cart.ChangeQuantity(ctx, "c1", "missing", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestCartService_RemoveFromCart(t *testing.T) {
	ctx := context.Background()
	f := loggedInFixture(t)

	_, err := f.cart.AddToCart(ctx, "c1", widget)
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, "c1", models.CartProduct{ID: "gadget", Name: "Gadget", PriceCents: 250})
	require.NoError(t, err)

	items, err := f.cart.RemoveFromCart(ctx, "c1", "widget")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "gadget", items[0].ID)

	items, err = f.cart.RemoveFromCart(ctx, "c1", "missing")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartService_RemoveAndChangeDoNotRequireLogin(t *testing.T) {
	ctx := context.Background()
	f := loggedInFixture(t)

	_, err := f.cart.AddToCart(ctx, "c1", widget)
	require.NoError(t, err)
	// Drop the session without clearing the cart.
	require.NoError(t, f.state.ClearSession(ctx, "c1"))

	items, err := f.cart.ChangeQuantity(ctx, "c1", "widget", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Quantity)

	items, err = f.cart.RemoveFromCart(ctx, "c1", "widget")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartService_ChangeQuantityExtremeDeltas(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{"max int increase saturates", 3, math.MaxInt, models.MaxLineQuantity},
		{"near max int increase saturates", 3, math.MaxInt - 10, models.MaxLineQuantity},
		{"min int decrease floors", 3, math.MinInt, 1},
		{"exact cap", 1, models.MaxLineQuantity - 1, models.MaxLineQuantity},
		{"one past cap", 1, models.MaxLineQuantity, models.MaxLineQuantity},
		{"decrease from cap", models.MaxLineQuantity, -1, models.MaxLineQuantity - 1},
		{"stored above cap is clamped", models.MaxLineQuantity + 500, 0, models.MaxLineQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := loggedInFixture(t)
			seedCart(t, f, models.CartItem{ID: "widget", Name: "Widget", PriceCents: 1000, Quantity: tc.start})

			items, err := f.cart.ChangeQuantity(ctx, "c1", "widget", tc.delta)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, tc.want, items[0].Quantity)

			b := pricing.Compute(items)
			assert.False(t, b.Overflow)
			assert.Positive(t, b.GrandTotalCents)
		})
	}
}

func TestCartService_AddSaturatesAtCap(t *testing.T) {
	ctx := context.Background()
	f := loggedInFixture(t)
	seedCart(t, f, models.CartItem{ID: widget.ID, Name: widget.Name, PriceCents: widget.PriceCents, Quantity: models.MaxLineQuantity})

	res, err := f.cart.AddToCart(ctx, "c1", widget)
	require.NoError(t, err)
	assert.Equal(t, models.MaxLineQuantity, res.Item.Quantity)
}

func TestCartService_SummaryHidesPricingWhenLoggedOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedCart(t, f, models.CartItem{ID: "widget", Name: "Widget", PriceCents: 1000, Quantity: 2})

	sum, err := f.cart.Summary(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.Nil(t, sum.Pricing)

	_, err = f.auth.Register(ctx, "c1", validUser())
	require.NoError(t, err)
	sum, err = f.cart.Summary(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, sum.Pricing)
	assert.Equal(t, int64(2000), sum.Pricing.GrandTotalCents)
}
