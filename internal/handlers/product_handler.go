package handlers

import (
	"errors"
	"fmt"

	"wholesale/internal/logger"
	"wholesale/internal/models"
	"wholesale/internal/repositories"
	"wholesale/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      *logger.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterAdminRoutes registers the catalog mutation routes behind guard.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router, guard fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", guard, h.HandleCreateProduct)
	productRoutes.Put("/:id", guard, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", guard, h.HandleDeleteProduct)
}

// HandleGetProducts lists the catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		h.log.Error("failed to list products", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleGetProductByID returns one catalog entry.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.GetProductByID(id)
	if err != nil {
		return h.productError(c, id, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a catalog entry.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, err)
	}
	if errs := h.validationErrors(product); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errs,
		})
	}

	if err := h.service.CreateProduct(&product); err != nil {
		h.log.Error("failed to create product", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a catalog entry's name, description and price.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, err)
	}
	product.ID = id
	if errs := h.validationErrors(product); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errs,
		})
	}

	if err := h.service.UpdateProduct(&product); err != nil {
		return h.productError(c, id, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a catalog entry.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(id); err != nil {
		return h.productError(c, id, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", id),
	})
}

// validationErrors returns per-field messages, or nil when product is valid.
func (h *ProductHandler) validationErrors(product models.Product) map[string]string {
	err := h.validate.Struct(product)
	if err == nil {
		return nil
	}
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	} else {
		errorMessages["product"] = err.Error()
	}
	return errorMessages
}

func (h *ProductHandler) productError(c *fiber.Ctx, id string, err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %s not found", id),
		})
	}
	h.log.Error("product request failed", "product_id", id, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not process product request",
		"error":   err.Error(),
	})
}
