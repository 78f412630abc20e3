package outbox

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	messages map[string]*Message
	order    []string
}

func newMemStore() *memStore {
	return &memStore{messages: make(map[string]*Message)}
}

func (s *memStore) add(id, routingKey string, payload []byte) {
	s.messages[id] = &Message{
		ID:         id,
		RoutingKey: routingKey,
		Payload:    payload,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	s.order = append(s.order, id)
}

func (s *memStore) FetchPending(limit int) ([]Message, error) {
	var out []Message
	for _, id := range s.order {
		m := s.messages[id]
		if m.Status != StatusPending {
			continue
		}
		out = append(out, *m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) MarkSent(id string) error {
	now := time.Now().UTC()
	s.messages[id].Status = StatusSent
	s.messages[id].SentAt = &now
	return nil
}

func (s *memStore) RecordAttempt(id string, maxAttempts int) error {
	m := s.messages[id]
	m.Attempts++
	if m.Attempts >= maxAttempts {
		m.Status = StatusFailed
	}
	return nil
}

type flakyPublisher struct {
	failures  int
	published []string // routing keys, in publish order
}

func (p *flakyPublisher) Publish(routingKey string, message []byte) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unreachable")
	}
	p.published = append(p.published, routingKey)
	return nil
}

func TestRelay_PublishesPending(t *testing.T) {
	store := newMemStore()
	store.add("a", "order.created", []byte(`{"id":1}`))
	store.add("b", "order.status.changed", []byte(`{"order_id":1}`))

	pub := &flakyPublisher{}
	relay := NewRelay(store, pub, time.Millisecond)

	require.NoError(t, relay.Flush())

	assert.Equal(t, []string{"order.created", "order.status.changed"}, pub.published)
	assert.Equal(t, StatusSent, store.messages["a"].Status)
	assert.Equal(t, StatusSent, store.messages["b"].Status)
}

// Broker outages delay delivery; they never lose events.
func TestRelay_RetriesUntilBrokerRecovers(t *testing.T) {
	store := newMemStore()
	store.add("a", "order.created", []byte(`{"id":1}`))

	pub := &flakyPublisher{failures: 3}
	relay := NewRelay(store, pub, time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, relay.Flush())
		assert.Equal(t, StatusPending, store.messages["a"].Status)
	}

	require.NoError(t, relay.Flush())
	assert.Equal(t, StatusSent, store.messages["a"].Status)
	assert.Equal(t, []string{"order.created"}, pub.published)
}

// One broken message must not block the rest of the batch.
func TestRelay_FailureDoesNotBlockBatch(t *testing.T) {
	store := newMemStore()
	store.add("a", "order.created", []byte(`{"id":1}`))
	store.add("b", "order.created", []byte(`{"id":2}`))

	pub := &flakyPublisher{failures: 1}
	relay := NewRelay(store, pub, time.Millisecond)

	require.NoError(t, relay.Flush())

	assert.Equal(t, StatusPending, store.messages["a"].Status)
	assert.Equal(t, StatusSent, store.messages["b"].Status)
}

func TestRelay_GivesUpAfterMaxAttempts(t *testing.T) {
	store := newMemStore()
	store.add("a", "order.created", []byte(`{"id":1}`))

	pub := &flakyPublisher{failures: 1000}
	relay := NewRelay(store, pub, time.Millisecond)
	relay.maxAttempts = 3

	for i := 0; i < 5; i++ {
		require.NoError(t, relay.Flush())
	}

	// Marked failed for inspection, not dropped.
	assert.Equal(t, StatusFailed, store.messages["a"].Status)
	assert.Equal(t, 3, store.messages["a"].Attempts)
}
