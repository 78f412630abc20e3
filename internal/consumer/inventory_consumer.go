package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cafehub/coffeeshop-go/internal/metrics"
	"github.com/cafehub/coffeeshop-go/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Outcome maps a handled delivery to its broker acknowledgment.
type Outcome int

const (
	// Ack: processing finished; partially applied events are still acked.
	Ack Outcome = iota
	// Requeue: transient failure, let the broker redeliver.
	Requeue
	// Drop: malformed beyond repair, dead-letter instead of retrying forever.
	Drop
)

// InventoryStore applies one order line to stock. Implementations must
// make the decrement conditional (never below zero) and idempotent per
// (order, product) pair.
type InventoryStore interface {
	ApplyLine(orderID, productID, quantity int) (models.StockResult, error)
}

// DedupCache is the fast-path duplicate check in front of the durable
// markers in the store. Losing it is safe, only slower.
type DedupCache interface {
	IsProcessed(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string) error
}

// CacheInvalidator drops cached product reads after a stock change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, productID int)
}

// InventoryConsumer reconciles order.created events against product
// stock. Lines are applied independently: an insufficient or unknown
// line is logged and skipped without failing its siblings.
type InventoryConsumer struct {
	store       InventoryStore
	dedup       DedupCache
	invalidator CacheInvalidator
	metrics     *metrics.Registry
}

func NewInventoryConsumer(store InventoryStore, dedup DedupCache, invalidator CacheInvalidator, reg *metrics.Registry) *InventoryConsumer {
	return &InventoryConsumer{
		store:       store,
		dedup:       dedup,
		invalidator: invalidator,
		metrics:     reg,
	}
}

func dedupKey(orderID int) string {
	return fmt.Sprintf("dedup:inventory:%d", orderID)
}

// HandleOrderCreated processes one delivery body and decides its fate.
func (c *InventoryConsumer) HandleOrderCreated(ctx context.Context, body []byte) Outcome {
	var event models.OrderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("❌ Failed to parse order.created event: %v", err)
		c.metrics.EventsMalformed.Inc()
		return Drop
	}
	if event.OrderID <= 0 {
		log.Printf("❌ order.created event without order id, dropping")
		c.metrics.EventsMalformed.Inc()
		return Drop
	}

	if c.dedup != nil {
		processed, err := c.dedup.IsProcessed(ctx, dedupKey(event.OrderID))
		if err != nil {
			log.Printf("⚠️ Dedup check failed for order %d: %v", event.OrderID, err)
		} else if processed {
			log.Printf("📦 Order #%d already processed, skipping", event.OrderID)
			c.metrics.EventsDuplicate.Inc()
			return Ack
		}
	}

	log.Printf("📥 Processing order #%d for %s (%d items)",
		event.OrderID, event.CustomerName, len(event.Items))

	transient := false
	for _, item := range event.Items {
		result, err := c.store.ApplyLine(event.OrderID, item.ProductID, item.Quantity)
		if err != nil {
			// Storage failure: retry the whole event. Already applied
			// lines are protected by their durable markers.
			log.Printf("⚠️ Failed to apply product %d for order %d: %v",
				item.ProductID, event.OrderID, err)
			transient = true
			continue
		}

		switch result {
		case models.StockApplied:
			log.Printf("✅ Reduced stock: product %d by %d (order #%d)",
				item.ProductID, item.Quantity, event.OrderID)
			c.metrics.LinesApplied.Inc()
			if c.invalidator != nil {
				c.invalidator.Invalidate(ctx, item.ProductID)
			}
		case models.StockDuplicate:
			log.Printf("📦 Product %d already adjusted for order #%d, skipping",
				item.ProductID, event.OrderID)
		case models.StockInsufficient:
			log.Printf("⚠️ Insufficient stock: product %d, requested %d (order #%d) - line skipped",
				item.ProductID, item.Quantity, event.OrderID)
			c.metrics.LinesInsufficient.Inc()
		case models.StockProductMissing:
			log.Printf("⚠️ Unknown product %d referenced by order #%d - line skipped",
				item.ProductID, event.OrderID)
			c.metrics.LinesUnknown.Inc()
		}
	}

	if transient {
		return Requeue
	}

	if c.dedup != nil {
		if err := c.dedup.MarkProcessed(ctx, dedupKey(event.OrderID)); err != nil {
			log.Printf("⚠️ Failed to set dedup marker for order %d: %v", event.OrderID, err)
		}
	}

	c.metrics.EventsConsumed.Inc()
	return Ack
}

// ProcessOrderCreated drains the delivery channel until it closes.
func (c *InventoryConsumer) ProcessOrderCreated(ctx context.Context, messages <-chan amqp.Delivery) {
	for msg := range messages {
		switch c.HandleOrderCreated(ctx, msg.Body) {
		case Ack:
			msg.Ack(false)
		case Requeue:
			msg.Nack(false, true)
		case Drop:
			msg.Nack(false, false)
		}
	}
}
