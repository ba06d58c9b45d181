package handlers

import (
	"errors"
	"fmt"

	"wholesale/internal/logger"
	"wholesale/internal/middleware"
	"wholesale/internal/models"
	"wholesale/internal/repositories"
	"wholesale/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the cart.
type CartHandler struct {
	renderer
	cartService    *services.CartService
	productService *services.ProductService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService, productService *services.ProductService, views *services.ViewService, log *logger.Logger) *CartHandler {
	return &CartHandler{
		renderer:       renderer{views: views, log: log},
		cartService:    cartService,
		productService: productService,
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleChangeQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

// HandleGetCart returns the cart contents and count. Pricing is included only
// for a signed-in user.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	summary, err := h.cartService.Summary(c.UserContext(), middleware.ClientID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(summary)
}

type addItemRequest struct {
	ID string `json:"id"`
}

// HandleAddItem adds one unit of a catalog product. Prices always come from
// the catalog.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	product, err := h.productService.CartProduct(req.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", req.ID),
			})
		}
		return h.fail(c, err)
	}

	res, err := h.cartService.AddToCart(c.UserContext(), middleware.ClientID(c), product)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, fiber.Map{
		"message": "Item added",
		"notice":  fmt.Sprintf("%s added to cart!", res.Item.Name),
		"item":    res.Item,
		"count":   res.Count,
	})
}

type changeQuantityRequest struct {
	Delta  int    `json:"delta"`
	Action string `json:"action"` // "increase" or "decrease", as carried by .qty-btn
}

func (r changeQuantityRequest) resolve() (int, error) {
	switch r.Action {
	case "":
		if r.Delta > models.MaxLineQuantity || r.Delta < -models.MaxLineQuantity {
			return 0, fmt.Errorf("delta must be between -%d and %d", models.MaxLineQuantity, models.MaxLineQuantity)
		}
		return r.Delta, nil
	case "increase":
		return 1, nil
	case "decrease":
		return -1, nil
	default:
		return 0, fmt.Errorf("unknown action %q", r.Action)
	}
}

// HandleChangeQuantity adjusts an item's quantity; it never drops below 1.
func (h *CartHandler) HandleChangeQuantity(c *fiber.Ctx) error {
	var req changeQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	delta, err := req.resolve()
	if err != nil {
		return badRequest(c, err)
	}

	items, err := h.cartService.ChangeQuantity(c.UserContext(), middleware.ClientID(c), c.Params("id"), delta)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, fiber.Map{
		"message": "Quantity updated",
		"items":   items,
	})
}

// HandleRemoveItem removes an item without confirmation.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	items, err := h.cartService.RemoveFromCart(c.UserContext(), middleware.ClientID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, fiber.Map{
		"message": "Item removed",
		"items":   items,
	})
}
