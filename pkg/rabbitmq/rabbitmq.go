package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"wholesale/internal/logger"
	"wholesale/internal/models"

	amqp "github.com/streadway/amqp"
)

// DefaultQueue is the queue order events are published to.
const DefaultQueue = "wholesale_orders"

// EventOrderPlaced is the type tag of a confirmed-order event.
const EventOrderPlaced = "order.placed"

var errNoChannel = errors.New("RabbitMQ channel is not available")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *logger.Logger
	mu      sync.Mutex // guards channel publishes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// OrderPlacedEvent is the message body published for a confirmed order.
type OrderPlacedEvent struct {
	Type            string    `json:"type"`
	OrderID         string    `json:"order_id"`
	Email           string    `json:"email"`
	TotalQuantity   int       `json:"total_quantity"`
	GrandTotalCents int64     `json:"grand_total_cents"`
	Lines           int       `json:"lines"`
	PlacedAt        time.Time `json:"placed_at"`
}

// NewOrderPlacedEvent builds the event for an order confirmation.
func NewOrderPlacedEvent(order models.OrderConfirmation) OrderPlacedEvent {
	return OrderPlacedEvent{
		Type:            EventOrderPlaced,
		OrderID:         order.ID,
		Email:           order.Email,
		TotalQuantity:   order.TotalQuantity,
		GrandTotalCents: order.GrandTotalCents,
		Lines:           len(order.Items),
		PlacedAt:        order.PlacedAt,
	}
}

// NewClient connects to RabbitMQ, opens a channel and declares the queue.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log = log.With("component", "rabbitmq", "queue", cfg.Queue)
	log.Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", name, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishOrderPlaced publishes an order.placed event as persistent JSON.
func (c *Client) PublishOrderPlaced(order models.OrderConfirmation) error {
	if c == nil || c.channel == nil {
		return errNoChannel
	}

	body, err := json.Marshal(NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         EventOrderPlaced,
			MessageId:    order.ID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug("published order event", "order_id", order.ID)
	return nil
}

// ConsumeOrderEvents starts a goroutine delivering decoded order events to
// handler. Messages are acked when handler returns nil. Undecodable messages
// are dropped; handler errors requeue the message once, then drop it.
func (c *Client) ConsumeOrderEvents(handler func(OrderPlacedEvent) error) error {
	if c == nil || c.channel == nil {
		return errNoChannel
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for order events")
	go func() {
		for msg := range msgs {
			c.handleDelivery(msg, handler)
		}
		c.log.Info("order event consumer stopped")
	}()
	return nil
}

func (c *Client) handleDelivery(msg amqp.Delivery, handler func(OrderPlacedEvent) error) {
	var event OrderPlacedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.log.Warn("dropping undecodable order event", "delivery_tag", msg.DeliveryTag, "error", err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.log.Error("failed to nack message", "delivery_tag", msg.DeliveryTag, "error", nackErr)
		}
		return
	}

	if err := handler(event); err != nil {
		c.log.Error("failed to process order event", "order_id", event.OrderID, "error", err)
		if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
			c.log.Error("failed to nack message", "delivery_tag", msg.DeliveryTag, "error", nackErr)
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		c.log.Error("failed to ack message", "delivery_tag", msg.DeliveryTag, "error", ackErr)
	}
}
