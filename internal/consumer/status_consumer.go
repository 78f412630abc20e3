package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cafehub/coffeeshop-go/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// StatusCache stores the latest known status per order for the tracking
// view. Implemented by cache.RedisCache.
type StatusCache interface {
	Set(ctx context.Context, key string, value interface{}) error
}

// StatusConsumer feeds the order-tracking view from order.status.changed
// events. Status updates are independent of stock reconciliation: an
// update for an order whose creation event was never seen still applies.
type StatusConsumer struct {
	cache StatusCache
}

func NewStatusConsumer(cache StatusCache) *StatusConsumer {
	return &StatusConsumer{cache: cache}
}

// StatusKey is the Redis key holding the tracking entry for an order.
func StatusKey(orderID int) string {
	return fmt.Sprintf("order_status:%d", orderID)
}

func (c *StatusConsumer) HandleStatusChanged(ctx context.Context, body []byte) Outcome {
	var event models.OrderStatusChangedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("❌ Failed to parse order.status.changed event: %v", err)
		return Drop
	}
	if event.OrderID <= 0 {
		log.Printf("❌ order.status.changed event without order id, dropping")
		return Drop
	}

	if err := c.cache.Set(ctx, StatusKey(event.OrderID), event); err != nil {
		log.Printf("⚠️ Failed to store status for order %d: %v", event.OrderID, err)
		return Requeue
	}

	log.Printf("🔄 Order #%d status → %s", event.OrderID, event.Status)
	return Ack
}

// ProcessStatusChanged drains the delivery channel until it closes.
func (c *StatusConsumer) ProcessStatusChanged(ctx context.Context, messages <-chan amqp.Delivery) {
	for msg := range messages {
		switch c.HandleStatusChanged(ctx, msg.Body) {
		case Ack:
			msg.Ack(false)
		case Requeue:
			msg.Nack(false, true)
		case Drop:
			msg.Nack(false, false)
		}
	}
}
