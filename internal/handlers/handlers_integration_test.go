package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"wholesale/internal/handlers"
	"wholesale/internal/logger"
	"wholesale/internal/middleware"
	"wholesale/internal/models"
	"wholesale/internal/repositories"
	"wholesale/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testAdminKey = "test_admin_key"

// setupApp builds a Fiber app backed by a private in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.Nop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Record{}, &models.Product{}))

	productRepo := repositories.NewGORMProductRepository(db)
	seedProductsForTest(t, productRepo)

	state := repositories.NewStateRepository(repositories.NewGORMKVStore(db), log)
	contextService := services.NewContextService("test_jwt_secret", time.Hour)
	authService := services.NewAuthService(state, bcrypt.MinCost, log)
	cartService := services.NewCartService(state, authService, log)
	checkoutService := services.NewCheckoutService(state, nil, log)
	viewService := services.NewViewService(checkoutService)
	productService := services.NewProductService(productRepo)

	productHandler := handlers.NewProductHandler(productService, log)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewContextHandler(contextService, log).RegisterRoutes(apiV1)
	handlers.NewAdminHandler(contextService, testAdminKey, log).RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	productHandler.RegisterAdminRoutes(apiV1, middleware.AdminOnly(contextService, log))

	client := apiV1.Group("", middleware.ClientContext(contextService, log))
	handlers.NewAuthHandler(authService, viewService, log).RegisterRoutes(client)
	handlers.NewCartHandler(cartService, productService, viewService, log).RegisterRoutes(client)
	handlers.NewCheckoutHandler(checkoutService, viewService, log).RegisterRoutes(client)
	handlers.NewViewHandler(viewService, log).RegisterRoutes(client)
	return app
}

func seedProductsForTest(t *testing.T, repo repositories.ProductRepository) {
	t.Helper()
	products := []models.Product{
		{ID: "tee", Name: "Classic Cotton Tee", PriceCents: 450},
		{ID: "tote", Name: "Canvas Tote", PriceCents: 1000},
	}
	for i := range products {
		require.NoError(t, repo.Create(&products[i]))
	}
}

type response struct {
	Status int
	Body   map[string]interface{}
}

func (r response) view() map[string]interface{} {
	v, _ := r.Body["view"].(map[string]interface{})
	return v
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.Body))
	}
	return out
}

func newContext(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/v1/context", "", nil)
	require.Equal(t, http.StatusCreated, resp.Status)
	token, _ := resp.Body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func adminToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/v1/admin/token", "", map[string]string{"api_key": testAdminKey})
	require.Equal(t, http.StatusCreated, resp.Status)
	token, _ := resp.Body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

var buyer = map[string]string{
	"email":    "buyer@example.com",
	"phone":    "555-0100",
	"company":  "Acme Wholesale",
	"password": "password123",
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)
	token := newContext(t, app)

	resp := call(t, app, http.MethodPost, "/api/v1/auth/register", token, buyer)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "User registered successfully", resp.Body["message"])
	user := resp.Body["user"].(map[string]interface{})
	assert.Empty(t, user["password"], "the hash is never returned")
	assert.Equal(t, "Logout", resp.view()["auth_link"].(map[string]interface{})["label"])

	// Duplicate registration.
	resp = call(t, app, http.MethodPost, "/api/v1/auth/register", token, buyer)
	assert.Equal(t, http.StatusConflict, resp.Status)

	// Missing field.
	resp = call(t, app, http.MethodPost, "/api/v1/auth/register", token, map[string]string{"email": "other@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Please fill in all fields.", resp.Body["notice"])

	resp = call(t, app, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Login", resp.view()["auth_link"].(map[string]interface{})["label"])

	resp = call(t, app, http.MethodPost, "/api/v1/auth/login", token, map[string]string{"email": "buyer@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, "Invalid email or password.", resp.Body["notice"])

	resp = call(t, app, http.MethodGet, "/api/v1/auth/status", token, nil)
	assert.Equal(t, false, resp.Body["logged_in"])

	resp = call(t, app, http.MethodPost, "/api/v1/auth/login", token, map[string]string{"email": "buyer@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = call(t, app, http.MethodGet, "/api/v1/auth/status", token, nil)
	assert.Equal(t, true, resp.Body["logged_in"])
}

func TestAddToCartWithoutLogin(t *testing.T) {
	app := setupApp(t)
	token := newContext(t, app)

	resp := call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]string{"id": "tee"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, handlers.LoginPath, resp.Body["redirect"])
	assert.Equal(t, "Please log in to add items to your cart.", resp.Body["notice"])
	assert.Equal(t, "0", resp.view()["cart_count"])

	resp = call(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, float64(0), resp.Body["count"])
	assert.NotContains(t, resp.Body, "pricing")
}

func TestCartAndCheckoutFlow(t *testing.T) {
	app := setupApp(t)
	token := newContext(t, app)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/auth/register", token, buyer).Status)

	resp := call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]string{"id": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]string{"id": "tee"})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Classic Cotton Tee added to cart!", resp.Body["notice"])
	assert.Equal(t, float64(1), resp.Body["count"])
	assert.Equal(t, "1", resp.view()["cart_count"])

	// Below the minimum order.
	resp = call(t, app, http.MethodPost, "/api/v1/checkout", token, map[string]bool{"confirmed": true})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, "below_minimum", resp.Body["reason"])

	resp = call(t, app, http.MethodPatch, "/api/v1/cart/items/tee", token, map[string]int{"delta": 59})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "60", resp.view()["cart_count"])

	resp = call(t, app, http.MethodGet, "/api/v1/checkout", token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	checkout := resp.Body["checkout"].(map[string]interface{})
	assert.Equal(t, "ready", checkout["state"])
	assert.Equal(t, float64(27000), checkout["pricing"].(map[string]interface{})["grand_total_cents"])
	assert.Contains(t, resp.view()["order_summary"], "<dd>270.00</dd>")

	resp = call(t, app, http.MethodPost, "/api/v1/checkout", token, map[string]bool{"confirmed": false})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = call(t, app, http.MethodPost, "/api/v1/checkout", token, map[string]bool{"confirmed": true})
	require.Equal(t, http.StatusCreated, resp.Status)
	order := resp.Body["order"].(map[string]interface{})
	assert.NotEmpty(t, order["id"])
	assert.Equal(t, float64(27000), order["grand_total_cents"])
	assert.Equal(t, "0", resp.view()["cart_count"])

	resp = call(t, app, http.MethodGet, "/api/v1/checkout", token, nil)
	assert.Equal(t, "empty_cart", resp.Body["checkout"].(map[string]interface{})["reason"])
}

func TestChangeQuantityActions(t *testing.T) {
	app := setupApp(t)
	token := newContext(t, app)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/auth/register", token, buyer).Status)
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]string{"id": "tote"}).Status)

	resp := call(t, app, http.MethodPatch, "/api/v1/cart/items/tote", token, map[string]string{"action": "increase"})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "2", resp.view()["cart_count"])

	for i := 0; i < 3; i++ {
		resp = call(t, app, http.MethodPatch, "/api/v1/cart/items/tote", token, map[string]string{"action": "decrease"})
		require.Equal(t, http.StatusOK, resp.Status)
	}
	assert.Equal(t, "1", resp.view()["cart_count"], "quantity floors at 1")

	resp = call(t, app, http.MethodPatch, "/api/v1/cart/items/tote", token, map[string]string{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = call(t, app, http.MethodDelete, "/api/v1/cart/items/tote", token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "0", resp.view()["cart_count"])
	assert.Contains(t, resp.view()["cart_container"], "Your cart is empty.")
}

func TestClientContextsAreIsolated(t *testing.T) {
	app := setupApp(t)
	first := newContext(t, app)
	second := newContext(t, app)

	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/auth/register", first, buyer).Status)

	resp := call(t, app, http.MethodGet, "/api/v1/auth/status", second, nil)
	assert.Equal(t, false, resp.Body["logged_in"])

	// The second context has its own directory, so the same email is free.
	resp = call(t, app, http.MethodPost, "/api/v1/auth/register", second, buyer)
	assert.Equal(t, http.StatusCreated, resp.Status)
}

func TestViewIsIdempotent(t *testing.T) {
	app := setupApp(t)
	token := newContext(t, app)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/auth/register", token, buyer).Status)
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]string{"id": "tee"}).Status)

	first := call(t, app, http.MethodGet, "/api/v1/view", token, nil)
	second := call(t, app, http.MethodGet, "/api/v1/view", token, nil)
	require.Equal(t, http.StatusOK, first.Status)
	assert.Equal(t, first.view(), second.view())
	assert.Equal(t, true, first.view()["pricing_visible"])
}

func TestProductEndpoints(t *testing.T) {
	app := setupApp(t)

	resp := call(t, app, http.MethodPost, "/api/v1/products", "", map[string]interface{}{"name": "Unauthorized", "price_cents": 100})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = call(t, app, http.MethodPost, "/api/v1/admin/token", "", map[string]string{"api_key": "guess"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	token := adminToken(t, app)
	resp = call(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Validation failed", resp.Body["message"])

	resp = call(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{"name": "Gold Tee", "price_cents": 100000001})
	assert.Equal(t, http.StatusBadRequest, resp.Status, "price above the catalog cap")

	resp = call(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"id":          "cap",
		"name":        "Twill Cap",
		"description": "Six-panel cap",
		"price_cents": 380,
	})
	require.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "cap", resp.Body["id"])

	resp = call(t, app, http.MethodGet, "/api/v1/products/cap", "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, float64(380), resp.Body["price_cents"])

	resp = call(t, app, http.MethodPut, "/api/v1/products/cap", token, map[string]interface{}{"name": "Twill Cap Pro", "price_cents": 420})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Twill Cap Pro", resp.Body["name"])

	resp = call(t, app, http.MethodDelete, "/api/v1/products/cap", token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body["message"], "deleted successfully")

	resp = call(t, app, http.MethodGet, "/api/v1/products/cap", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = call(t, app, http.MethodPut, "/api/v1/products/cap", token, map[string]interface{}{"name": "Ghost", "price_cents": 1})
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestClientContextCannotRepriceCatalog(t *testing.T) {
	app := setupApp(t)
	buyerToken := newContext(t, app)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/auth/register", buyerToken, buyer).Status)

	anonymous := newContext(t, app)
	resp := call(t, app, http.MethodPut, "/api/v1/products/tote", anonymous, map[string]interface{}{"name": "Canvas Tote", "price_cents": 0})
	assert.Equal(t, http.StatusForbidden, resp.Status)
	resp = call(t, app, http.MethodDelete, "/api/v1/products/tote", anonymous, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)
	resp = call(t, app, http.MethodPost, "/api/v1/products", anonymous, map[string]interface{}{"id": "free", "name": "Free Tee", "price_cents": 0})
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = call(t, app, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]string{"id": "tote"})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, float64(1000), resp.Body["item"].(map[string]interface{})["price_cents"])
}

func TestChangeQuantityRejectsHugeDelta(t *testing.T) {
	app := setupApp(t)
	token := newContext(t, app)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/auth/register", token, buyer).Status)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]string{"id": "tote"}).Status)
	}

	for _, delta := range []int64{math.MaxInt64, math.MaxInt64 - 10, math.MinInt64, models.MaxLineQuantity + 1} {
		resp := call(t, app, http.MethodPatch, "/api/v1/cart/items/tote", token, map[string]int64{"delta": delta})
		assert.Equal(t, http.StatusBadRequest, resp.Status, "delta %d", delta)
	}

	resp := call(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, float64(3), resp.Body["count"], "rejected deltas leave the cart alone")

	resp = call(t, app, http.MethodPatch, "/api/v1/cart/items/tote", token, map[string]int{"delta": models.MaxLineQuantity})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, strconv.Itoa(models.MaxLineQuantity), resp.view()["cart_count"], "saturates at the line cap")

	resp = call(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	pricing := resp.Body["pricing"].(map[string]interface{})
	assert.Equal(t, float64(models.MaxLineQuantity*1000*8/10), pricing["grand_total_cents"])
	assert.Equal(t, float64(2000), pricing["discount_rate_bp"])
}
