package outbox

import (
	"context"
	"log"
	"time"
)

// Publisher hands a message body to the broker. Satisfied by
// messaging.RabbitMQ and by fakes in tests.
type Publisher interface {
	Publish(routingKey string, message []byte) error
}

// Store is the persistence side of the relay.
type Store interface {
	FetchPending(limit int) ([]Message, error)
	MarkSent(id string) error
	RecordAttempt(id string, maxAttempts int) error
}

// Relay drains pending outbox messages to the broker. Publish failures
// are retried on the next tick; a message is only given up on after
// maxAttempts tries, and even then it stays in the table marked FAILED
// for inspection rather than being dropped.
type Relay struct {
	store       Store
	publisher   Publisher
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewRelay(store Store, publisher Publisher, interval time.Duration) *Relay {
	return &Relay{
		store:       store,
		publisher:   publisher,
		interval:    interval,
		batchSize:   100,
		maxAttempts: 10,
	}
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("outbox relay stopped")
			return
		case <-ticker.C:
			if err := r.Flush(); err != nil {
				log.Printf("⚠️ Outbox flush failed: %v", err)
			}
		}
	}
}

// Flush publishes one batch of pending messages. A failure on one
// message does not stop the rest of the batch.
func (r *Relay) Flush() error {
	messages, err := r.store.FetchPending(r.batchSize)
	if err != nil {
		return err
	}

	for _, m := range messages {
		if err := r.publisher.Publish(m.RoutingKey, m.Payload); err != nil {
			log.Printf("⚠️ Failed to publish outbox message %s (%s, attempt %d): %v",
				m.ID, m.RoutingKey, m.Attempts+1, err)
			if err := r.store.RecordAttempt(m.ID, r.maxAttempts); err != nil {
				return err
			}
			continue
		}

		if err := r.store.MarkSent(m.ID); err != nil {
			return err
		}
		log.Printf("📤 Published %s event (outbox %s)", m.RoutingKey, m.ID)
	}

	return nil
}
