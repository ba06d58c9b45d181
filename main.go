package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"wholesale/internal/config"
	"wholesale/internal/logger"
	"wholesale/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync()

	a, err := newApplication(cfg, lg)
	if err != nil {
		lg.Fatal("failed to start", "error", err)
	}
	defer a.Close()

	if a.mq != nil {
		err := a.mq.ConsumeOrderEvents(func(event rabbitmq.OrderPlacedEvent) error {
			lg.Info("order event received",
				"order_id", event.OrderID,
				"email", event.Email,
				"total_quantity", event.TotalQuantity,
				"grand_total_cents", event.GrandTotalCents)
			return nil
		})
		if err != nil {
			lg.Warn("failed to start order event consumer", "error", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		lg.Info("starting server", "port", cfg.AppPort, "store", cfg.StoreDriver)
		if err := a.app.Listen(cfg.AppPort); err != nil {
			lg.Fatal("server failed", "error", err)
		}
	}()

	<-quit
	lg.Info("shutting down server")
	if err := a.app.Shutdown(); err != nil {
		lg.Error("error during Fiber shutdown", "error", err)
	}
	lg.Info("server gracefully stopped")
}
