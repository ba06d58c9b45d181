package handlers

import (
	"fmt"

	"wholesale/internal/logger"
	"wholesale/internal/middleware"
	"wholesale/internal/models"
	"wholesale/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	renderer
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, views *services.ViewService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		renderer:    renderer{views: views, log: log},
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/status", h.HandleStatus)
}

// HandleRegister handles new user registration. A successful registration
// also signs the user in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return badRequest(c, err)
	}

	registered, err := h.authService.Register(c.UserContext(), middleware.ClientID(c), user)
	if err != nil {
		return h.fail(c, err)
	}

	registered.Password = ""
	return h.respond(c, fiber.StatusCreated, fiber.Map{
		"message": "User registered successfully",
		"notice":  "Registration successful! You are now logged in.",
		"user":    registered,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin starts a session for matching credentials.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", services.ErrMissingFields, err))
	}

	session, err := h.authService.Login(c.UserContext(), middleware.ClientID(c), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, fiber.Map{
		"message": "Login successful",
		"notice":  "Welcome back!",
		"session": session,
	})
}

// HandleLogout ends the session. The cart is abandoned with it.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.ClientID(c)); err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, fiber.Map{
		"message": "Logged out",
	})
}

// HandleStatus reports whether a user is signed in.
func (h *AuthHandler) HandleStatus(c *fiber.Ctx) error {
	session, err := h.authService.CurrentSession(c.UserContext(), middleware.ClientID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"logged_in": session != nil,
		"session":   session,
	})
}
