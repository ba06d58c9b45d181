package handlers

import (
	"wholesale/internal/logger"
	"wholesale/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ContextHandler issues client context tokens.
type ContextHandler struct {
	contexts *services.ContextService
	log      *logger.Logger
}

// NewContextHandler creates a new ContextHandler.
func NewContextHandler(contexts *services.ContextService, log *logger.Logger) *ContextHandler {
	return &ContextHandler{contexts: contexts, log: log}
}

// RegisterRoutes registers the context routes.
func (h *ContextHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/context", h.HandleCreateContext)
}

// HandleCreateContext starts a new client context: an empty session, user
// directory and cart, addressed by the returned token.
func (h *ContextHandler) HandleCreateContext(c *fiber.Ctx) error {
	token, clientID, err := h.contexts.Issue()
	if err != nil {
		h.log.Error("failed to issue client context", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create client context",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":     token,
		"client_id": clientID,
	})
}
