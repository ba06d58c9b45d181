package handlers

import (
	"wholesale/internal/logger"
	"wholesale/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ViewHandler serves the rendered fragments on page load.
type ViewHandler struct {
	renderer
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(views *services.ViewService, log *logger.Logger) *ViewHandler {
	return &ViewHandler{renderer: renderer{views: views, log: log}}
}

// RegisterRoutes registers the view route.
func (h *ViewHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/view", h.HandleGetView)
}

// HandleGetView renders the current state.
func (h *ViewHandler) HandleGetView(c *fiber.Ctx) error {
	return h.respond(c, fiber.StatusOK, fiber.Map{})
}
