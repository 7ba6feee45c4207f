package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront-orders/model"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// Event is the message body published for every notification.
type Event struct {
	ID         uuid.UUID   `json:"id"`
	Kind       Kind        `json:"kind"`
	Subject    string      `json:"subject"`
	Order      model.Order `json:"order"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// channelPublisher is the part of *amqp.Channel the notifier needs.
type channelPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes order events to a topic exchange; a mail worker
// downstream turns them into buyer emails.
type AMQPNotifier struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channelPublisher
	exchange string
	logger   *slog.Logger
}

// DialAMQP connects, opens a channel and declares the durable topic exchange.
func DialAMQP(url, exchange string, logger *slog.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	logger.Info("connected to RabbitMQ", "exchange", exchange)
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, order model.Order, kind Kind) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := Event{
		ID:         uuid.New(),
		Kind:       kind,
		Subject:    Subject(kind),
		Order:      order,
		OccurredAt: time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event serialization error: %w", err)
	}

	routingKey := "order." + string(kind)

	// a channel is not safe for concurrent publishes
	n.mu.Lock()
	defer n.mu.Unlock()
	err = n.ch.Publish(
		n.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.OccurredAt,
			Headers: amqp.Table{
				"order_id": order.ID.String(),
				"kind":     string(kind),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("event publish error: %w", err)
	}

	n.logger.Debug("event published", "routing_key", routingKey, "order_id", order.ID)
	return nil
}

func (n *AMQPNotifier) Close() error {
	if c, ok := n.ch.(*amqp.Channel); ok {
		if err := c.Close(); err != nil {
			n.logger.Warn("failed to close channel", "error", err)
		}
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
