package main

import (
	"context"
	"fmt"
	"time"

	"wholesale/internal/config"
	"wholesale/internal/handlers"
	"wholesale/internal/logger"
	"wholesale/internal/middleware"
	"wholesale/internal/models"
	"wholesale/internal/repositories"
	"wholesale/internal/services"
	"wholesale/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// application bundles the HTTP app with the resources it owns.
type application struct {
	app     *fiber.App
	mq      *rabbitmq.Client
	log     *logger.Logger
	closers []func() error
}

// newApplication wires stores, services and handlers from cfg.
func newApplication(cfg *config.Config, log *logger.Logger) (*application, error) {
	a := &application{log: log}

	kv, db, err := a.openStore(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var productRepo repositories.ProductRepository
	if db != nil {
		productRepo = repositories.NewGORMProductRepository(db)
	} else {
		productRepo = repositories.NewMemoryProductRepository()
	}
	if cfg.SeedCatalog {
		seedProducts(productRepo, log)
	}

	// A nil *rabbitmq.Client must not end up inside the interface.
	var publisher services.OrderPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.mq = mq
		a.closers = append(a.closers, mq.Close)
		publisher = mq
	} else {
		log.Info("RABBITMQ_URL not set, order events disabled")
	}
	if cfg.AdminAPIKey == "" {
		log.Info("ADMIN_API_KEY not set, catalog administration disabled")
	}

	// --- Services ---
	state := repositories.NewStateRepository(kv, log)
	contextService := services.NewContextService(cfg.JWTSecret, cfg.ContextTokenTTL)
	authService := services.NewAuthService(state, cfg.BcryptCost, log)
	cartService := services.NewCartService(state, authService, log)
	checkoutService := services.NewCheckoutService(state, publisher, log)
	viewService := services.NewViewService(checkoutService)
	productService := services.NewProductService(productRepo)

	// --- Handlers ---
	handlerLog := log.With("component", "http")
	contextHandler := handlers.NewContextHandler(contextService, handlerLog)
	adminHandler := handlers.NewAdminHandler(contextService, cfg.AdminAPIKey, handlerLog)
	productHandler := handlers.NewProductHandler(productService, handlerLog)
	authHandler := handlers.NewAuthHandler(authService, viewService, handlerLog)
	cartHandler := handlers.NewCartHandler(cartService, productService, viewService, handlerLog)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, viewService, handlerLog)
	viewHandler := handlers.NewViewHandler(viewService, handlerLog)

	app := fiber.New(fiber.Config{AppName: "wholesale"})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	apiV1 := app.Group("/api/v1")
	contextHandler.RegisterRoutes(apiV1)
	adminHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	// Admin routes must be registered before the client group, whose
	// middleware covers every later /api/v1 route.
	productHandler.RegisterAdminRoutes(apiV1, middleware.AdminOnly(contextService, handlerLog))

	client := apiV1.Group("", middleware.ClientContext(contextService, handlerLog))
	authHandler.RegisterRoutes(client)
	cartHandler.RegisterRoutes(client)
	checkoutHandler.RegisterRoutes(client)
	viewHandler.RegisterRoutes(client)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"store":    cfg.StoreDriver,
			"rabbitmq": a.mq != nil,
		})
	})

	a.app = app
	return a, nil
}

// openStore opens the configured persisted store. db is non-nil for the
// SQL drivers so the catalog can share the connection.
func (a *application) openStore(cfg *config.Config) (repositories.KVStore, *gorm.DB, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return repositories.NewMemoryKVStore(), nil, nil

	case config.DriverSQLite, config.DriverPostgres:
		var dialector gorm.Dialector
		if cfg.StoreDriver == config.DriverSQLite {
			dialector = sqlite.Open(cfg.DatabaseDSN)
		} else {
			dialector = postgres.Open(cfg.DatabaseDSN)
		}
		db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		if err := db.AutoMigrate(&models.Record{}, &models.Product{}); err != nil {
			return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
		}
		return repositories.NewGORMKVStore(db), db, nil

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			DialTimeout: 5 * time.Second,
		})
		a.closers = append(a.closers, rdb.Close)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return repositories.NewRedisKVStore(rdb, "wholesale:"), nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// Close releases everything the application opened, newest first.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("error during shutdown", "error", err)
		}
	}
	a.closers = nil
}

// seedProducts populates the catalog with the wholesale line.
func seedProducts(repo repositories.ProductRepository, log *logger.Logger) {
	products := []models.Product{
		{ID: "tee-classic", Name: "Classic Cotton Tee", Description: "180gsm ring-spun cotton, unprinted", PriceCents: 450},
		{ID: "hoodie-fleece", Name: "Fleece Hoodie", Description: "Brushed fleece pullover hoodie", PriceCents: 1450},
		{ID: "tote-canvas", Name: "Canvas Tote", Description: "12oz natural canvas tote bag", PriceCents: 320},
		{ID: "cap-twill", Name: "Twill Cap", Description: "Six-panel structured twill cap", PriceCents: 380},
	}

	for i := range products {
		if _, err := repo.GetByID(products[i].ID); err == nil {
			continue
		}
		if err := repo.Create(&products[i]); err != nil {
			log.Warn("failed to seed product", "product_id", products[i].ID, "error", err)
			continue
		}
		log.Debug("seeded product", "product_id", products[i].ID)
	}
}
