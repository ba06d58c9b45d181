package handlers

import (
	"crypto/subtle"

	"wholesale/internal/logger"
	"wholesale/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler exchanges the configured admin API key for an admin token.
type AdminHandler struct {
	contexts *services.ContextService
	apiKey   string
	validate *validator.Validate
	log      *logger.Logger
}

// NewAdminHandler creates a new AdminHandler. An empty apiKey disables
// admin access entirely.
func NewAdminHandler(contexts *services.ContextService, apiKey string, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		contexts: contexts,
		apiKey:   apiKey,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the admin token route.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/admin/token", h.HandleIssueToken)
}

// AdminTokenRequest represents the request body for an admin token.
type AdminTokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// HandleIssueToken returns a signed admin token for a matching API key.
func (h *AdminHandler) HandleIssueToken(c *fiber.Ctx) error {
	if h.apiKey == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Admin access is disabled",
		})
	}

	var req AdminTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err)
	}
	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.apiKey)) != 1 {
		h.log.Warn("admin token request with wrong API key", "ip", c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid API key",
		})
	}

	token, err := h.contexts.IssueAdmin()
	if err != nil {
		h.log.Error("failed to issue admin token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not issue admin token",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token})
}
