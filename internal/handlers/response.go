package handlers

import (
	"errors"

	"wholesale/internal/logger"
	"wholesale/internal/middleware"
	"wholesale/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Notices shown to the user when an operation is rejected.
const (
	noticeLoginRequired  = "Please log in to add items to your cart."
	noticeMissingFields  = "Please fill in all fields."
	noticeEmailTaken     = "An account with this email already exists."
	noticeBadCredentials = "Invalid email or password."
	noticeNotConfirmed   = "Please confirm your order to continue."
	noticeInvalidProduct = "This product cannot be added to the cart."
	noticeServerError    = "Something went wrong. Please try again."
)

// LoginPath is where the user is sent when an action needs a session.
const LoginPath = "/login"

// renderer embeds the re-rendered view into every response so the page can
// refresh its fragments after a state change.
type renderer struct {
	views *services.ViewService
	log   *logger.Logger
}

func (r renderer) respond(c *fiber.Ctx, status int, body fiber.Map) error {
	frags, err := r.views.Sync(c.UserContext(), middleware.ClientID(c))
	if err != nil {
		r.log.Error("view sync failed", "client_id", middleware.ClientID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": noticeServerError,
			"error":   err.Error(),
		})
	}
	body["view"] = frags
	return c.Status(status).JSON(body)
}

// fail maps a service error to a status code and notice.
func (r renderer) fail(c *fiber.Ctx, err error) error {
	var blocked *services.CheckoutBlockedError
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return r.respond(c, fiber.StatusUnauthorized, fiber.Map{
			"message":  "Login required",
			"notice":   noticeLoginRequired,
			"redirect": LoginPath,
		})
	case errors.Is(err, services.ErrMissingFields):
		return r.respond(c, fiber.StatusBadRequest, fiber.Map{
			"message": "Validation failed",
			"notice":  noticeMissingFields,
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrEmailTaken):
		return r.respond(c, fiber.StatusConflict, fiber.Map{
			"message": "Registration failed",
			"notice":  noticeEmailTaken,
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return r.respond(c, fiber.StatusUnauthorized, fiber.Map{
			"message": "Authentication failed",
			"notice":  noticeBadCredentials,
		})
	case errors.Is(err, services.ErrInvalidProduct):
		return r.respond(c, fiber.StatusBadRequest, fiber.Map{
			"message": "Invalid product",
			"notice":  noticeInvalidProduct,
			"error":   err.Error(),
		})
	case errors.As(err, &blocked):
		body := fiber.Map{
			"message": "Checkout blocked",
			"reason":  blocked.Reason,
			"notice":  blocked.Reason.Message(),
		}
		if blocked.Reason == services.ReasonNotLoggedIn {
			body["redirect"] = LoginPath
		}
		return r.respond(c, fiber.StatusUnprocessableEntity, body)
	case errors.Is(err, services.ErrNotConfirmed):
		return r.respond(c, fiber.StatusBadRequest, fiber.Map{
			"message": "Order not confirmed",
			"notice":  noticeNotConfirmed,
		})
	default:
		r.log.Error("request failed", "path", c.Path(), "client_id", middleware.ClientID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": noticeServerError,
			"error":   err.Error(),
		})
	}
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
