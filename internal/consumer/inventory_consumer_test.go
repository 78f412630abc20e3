package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafehub/coffeeshop-go/internal/cache"
	"github.com/cafehub/coffeeshop-go/internal/metrics"
	"github.com/cafehub/coffeeshop-go/internal/models"
)

// fakeStore mimics the product repository: conditional decrements
// serialized by a mutex and durable (order, product) markers.
type fakeStore struct {
	mu       sync.Mutex
	stock    map[int]int
	applied  map[[2]int]bool
	failures int
}

func newFakeStore(stock map[int]int) *fakeStore {
	return &fakeStore{
		stock:   stock,
		applied: make(map[[2]int]bool),
	}
}

func (s *fakeStore) ApplyLine(orderID, productID, quantity int) (models.StockResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--
		return 0, errors.New("storage unavailable")
	}

	key := [2]int{orderID, productID}
	if s.applied[key] {
		return models.StockDuplicate, nil
	}

	current, ok := s.stock[productID]
	if !ok {
		return models.StockProductMissing, nil
	}
	if current < quantity {
		return models.StockInsufficient, nil
	}

	s.stock[productID] = current - quantity
	s.applied[key] = true
	return models.StockApplied, nil
}

func (s *fakeStore) stockOf(productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[productID]
}

func eventBody(t *testing.T, orderID int, items ...models.OrderItemEvent) []byte {
	t.Helper()
	body, err := json.Marshal(models.OrderCreatedEvent{
		OrderID:      orderID,
		CustomerName: "Test Customer",
		OrderDate:    time.Now().UTC(),
		Status:       models.StatusPending,
		Items:        items,
	})
	require.NoError(t, err)
	return body
}

func newConsumer(store InventoryStore) *InventoryConsumer {
	return NewInventoryConsumer(store, nil, nil, metrics.NewRegistry())
}

func TestHandleOrderCreated_AppliesStock(t *testing.T) {
	store := newFakeStore(map[int]int{1: 10})
	c := newConsumer(store)

	outcome := c.HandleOrderCreated(context.Background(),
		eventBody(t, 100, models.OrderItemEvent{ProductID: 1, Quantity: 3}))

	assert.Equal(t, Ack, outcome)
	assert.Equal(t, 7, store.stockOf(1))
}

func TestHandleOrderCreated_InsufficientStockSkipsLineOnly(t *testing.T) {
	store := newFakeStore(map[int]int{1: 2, 2: 10})
	c := newConsumer(store)

	outcome := c.HandleOrderCreated(context.Background(), eventBody(t, 101,
		models.OrderItemEvent{ProductID: 1, Quantity: 5},
		models.OrderItemEvent{ProductID: 2, Quantity: 4},
	))

	// The short line is skipped, its sibling still applies, and the
	// event is acknowledged rather than redelivered.
	assert.Equal(t, Ack, outcome)
	assert.Equal(t, 2, store.stockOf(1))
	assert.Equal(t, 6, store.stockOf(2))
}

func TestHandleOrderCreated_RedeliveryIsIdempotent(t *testing.T) {
	store := newFakeStore(map[int]int{1: 10})
	c := newConsumer(store)

	body := eventBody(t, 102, models.OrderItemEvent{ProductID: 1, Quantity: 3})

	assert.Equal(t, Ack, c.HandleOrderCreated(context.Background(), body))
	assert.Equal(t, Ack, c.HandleOrderCreated(context.Background(), body))

	assert.Equal(t, 7, store.stockOf(1), "redelivery must not decrement twice")
}

func TestHandleOrderCreated_UnknownProductSkipped(t *testing.T) {
	store := newFakeStore(map[int]int{1: 10})
	c := newConsumer(store)

	outcome := c.HandleOrderCreated(context.Background(), eventBody(t, 103,
		models.OrderItemEvent{ProductID: 99, Quantity: 1},
		models.OrderItemEvent{ProductID: 1, Quantity: 2},
	))

	assert.Equal(t, Ack, outcome)
	assert.Equal(t, 8, store.stockOf(1))
}

func TestHandleOrderCreated_MalformedDropped(t *testing.T) {
	store := newFakeStore(map[int]int{1: 10})
	c := newConsumer(store)

	assert.Equal(t, Drop, c.HandleOrderCreated(context.Background(), []byte("not json")))

	// Parseable but missing the order id.
	assert.Equal(t, Drop, c.HandleOrderCreated(context.Background(), []byte(`{"items":[]}`)))

	assert.Equal(t, 10, store.stockOf(1))
}

func TestHandleOrderCreated_TransientErrorRequeues(t *testing.T) {
	store := newFakeStore(map[int]int{1: 10})
	store.failures = 1
	c := newConsumer(store)

	body := eventBody(t, 104, models.OrderItemEvent{ProductID: 1, Quantity: 3})

	assert.Equal(t, Requeue, c.HandleOrderCreated(context.Background(), body))

	// Broker redelivers; this time storage is back.
	assert.Equal(t, Ack, c.HandleOrderCreated(context.Background(), body))
	assert.Equal(t, 7, store.stockOf(1))
}

func TestHandleOrderCreated_ConcurrentOrdersSameProduct(t *testing.T) {
	const (
		initialStock = 100
		workers      = 10
		quantity     = 7
	)

	store := newFakeStore(map[int]int{1: initialStock})
	c := newConsumer(store)

	bodies := make([][]byte, workers)
	for i := range bodies {
		bodies[i] = eventBody(t, 200+i, models.OrderItemEvent{ProductID: 1, Quantity: quantity})
	}

	var wg sync.WaitGroup
	outcomes := make([]Outcome, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = c.HandleOrderCreated(context.Background(), bodies[i])
		}(i)
	}
	wg.Wait()

	for i, outcome := range outcomes {
		assert.Equal(t, Ack, outcome, "worker %d", i)
	}
	assert.Equal(t, initialStock-workers*quantity, store.stockOf(1),
		"no lost updates under concurrent processing")
}

func TestHandleOrderCreated_DedupCacheShortCircuits(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	dedup := cache.NewRedisCacheFromClient(client, time.Hour)

	store := newFakeStore(map[int]int{1: 10})
	c := NewInventoryConsumer(store, dedup, nil, metrics.NewRegistry())

	body := eventBody(t, 105, models.OrderItemEvent{ProductID: 1, Quantity: 3})

	require.Equal(t, Ack, c.HandleOrderCreated(context.Background(), body))
	require.Equal(t, 7, store.stockOf(1))

	// Second delivery never reaches the store.
	swapped := newFakeStore(map[int]int{1: 7})
	c2 := NewInventoryConsumer(swapped, dedup, nil, metrics.NewRegistry())
	assert.Equal(t, Ack, c2.HandleOrderCreated(context.Background(), body))
	assert.Equal(t, 7, swapped.stockOf(1))
}
