package messaging

import (
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker topology. Every component that touches the exchange must agree
// on these names; queues are bound with a routing key equal to the queue
// name (exact match, no wildcards).
const (
	ExchangeName = "coffee-shop-exchange"

	OrderCreatedQueue       = "order.created"
	OrderStatusChangedQueue = "order.status.changed"
	InventoryUpdatedQueue   = "inventory.updated"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(host string, port int, user, password string) (*RabbitMQ, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", user, password, host, port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	log.Println("✅ Connected to RabbitMQ")

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
	}, nil
}

// DeclareTopology declares the direct exchange plus the durable queues
// and binds each queue with a routing key identical to its name.
// Declarations are idempotent, so every service runs this on startup.
func (r *RabbitMQ) DeclareTopology() error {
	err := r.channel.ExchangeDeclare(
		ExchangeName, // name
		"direct",     // kind
		true,         // durable
		false,        // auto-delete
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	queues := []string{OrderCreatedQueue, OrderStatusChangedQueue, InventoryUpdatedQueue}
	for _, name := range queues {
		if err := r.DeclareQueue(name); err != nil {
			return err
		}
		if err := r.channel.QueueBind(name, name, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", name, err)
		}
	}

	log.Printf("✅ Declared exchange %s with %d bound queues", ExchangeName, len(queues))
	return nil
}

// DeclareQueue creates a durable queue if it doesn't exist
func (r *RabbitMQ) DeclareQueue(name string) error {
	_, err := r.channel.QueueDeclare(
		name,  // queue name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}

	return nil
}

// Publish sends a persistent message to the exchange with the given
// routing key.
func (r *RabbitMQ) Publish(routingKey string, message []byte) error {
	err := r.channel.Publish(
		ExchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         message,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// Consume receives messages from a queue with manual acknowledgment.
func (r *RabbitMQ) Consume(queue string) (<-chan amqp.Delivery, error) {
	messages, err := r.channel.Consume(
		queue, // queue name
		"",    // consumer tag
		false, // auto-ack (false = manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume messages: %w", err)
	}

	log.Printf("👂 Listening on queue: %s", queue)
	return messages, nil
}

// Close closes the connection
func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
