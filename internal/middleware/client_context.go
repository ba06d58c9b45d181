package middleware

import (
	"errors"
	"strings"

	"wholesale/internal/logger"
	"wholesale/internal/services"

	"github.com/gofiber/fiber/v2"
)

const clientIDKey = "client_id"

// bearerToken extracts the token from "Authorization: Bearer <token>". On
// failure it writes the 401 response and returns ok=false.
func bearerToken(c *fiber.Ctx) (token string, ok bool, err error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authorization header is required",
		})
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return "", false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authorization header format must be 'Bearer <token>'",
		})
	}
	return parts[1], true, nil
}

// ClientContext is a Fiber middleware that resolves the client context from
// the bearer token and stores its ID for subsequent handlers.
func ClientContext(contexts *services.ContextService, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok, err := bearerToken(c)
		if !ok {
			return err
		}

		clientID, err := contexts.Validate(token)
		if err != nil {
			log.Debug("client context token rejected", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired client context",
				"error":   err.Error(),
			})
		}

		c.Locals(clientIDKey, clientID)
		return c.Next()
	}
}

// ClientID returns the client context ID stored by ClientContext.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(clientIDKey).(string)
	return id
}

// AdminOnly guards catalog administration. Client context tokens are
// rejected with 403.
func AdminOnly(contexts *services.ContextService, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok, err := bearerToken(c)
		if !ok {
			return err
		}

		if err := contexts.ValidateAdmin(token); err != nil {
			log.Warn("admin request rejected", "path", c.Path(), "error", err)
			if errors.Is(err, services.ErrForbidden) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": "Admin access required",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired admin token",
				"error":   err.Error(),
			})
		}
		return c.Next()
	}
}
