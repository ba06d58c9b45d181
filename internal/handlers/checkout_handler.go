package handlers

import (
	"wholesale/internal/logger"
	"wholesale/internal/middleware"
	"wholesale/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	renderer
	checkoutService *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService *services.CheckoutService, views *services.ViewService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		renderer:        renderer{views: views, log: log},
		checkoutService: checkoutService,
	}
}

// RegisterRoutes registers the checkout routes.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/checkout", h.HandleGetCheckout)
	router.Post("/checkout", h.HandleSubmit)
}

// HandleGetCheckout returns the evaluated checkout: ready with the priced
// order, or blocked with a reason.
func (h *CheckoutHandler) HandleGetCheckout(c *fiber.Ctx) error {
	checkout, err := h.checkoutService.Evaluate(c.UserContext(), middleware.ClientID(c))
	if err != nil {
		return h.fail(c, err)
	}
	body := fiber.Map{"checkout": checkout}
	if checkout.State == services.CheckoutBlocked {
		body["notice"] = checkout.Reason.Message()
		if checkout.Reason == services.ReasonNotLoggedIn {
			body["redirect"] = LoginPath
		}
	}
	return h.respond(c, fiber.StatusOK, body)
}

type submitRequest struct {
	Confirmed bool `json:"confirmed"`
}

// HandleSubmit places the order. Nothing is sent anywhere except the optional
// order event; the confirmation is simulated.
func (h *CheckoutHandler) HandleSubmit(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	order, err := h.checkoutService.Submit(c.UserContext(), middleware.ClientID(c), req.Confirmed)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, fiber.Map{
		"message": "Order placed",
		"notice":  "Thank you! Your order has been placed.",
		"order":   order,
	})
}
