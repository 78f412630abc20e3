package outbox

import "time"

const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

// Message is an event waiting in the local outbox table. It is written
// in the same transaction as the state change that produced it, so an
// order can never commit without its event and vice versa.
type Message struct {
	ID         string // uuid
	RoutingKey string
	Payload    []byte
	Status     string
	Attempts   int
	CreatedAt  time.Time
	SentAt     *time.Time
}
