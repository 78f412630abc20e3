package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafehub/coffeeshop-go/internal/cache"
	"github.com/cafehub/coffeeshop-go/internal/models"
)

func statusTestCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewRedisCacheFromClient(client, time.Hour)
}

func TestHandleStatusChanged_StoresLatestStatus(t *testing.T) {
	statusCache := statusTestCache(t)
	c := NewStatusConsumer(statusCache)

	body, err := json.Marshal(models.NewOrderStatusChangedEvent(42, models.StatusReady))
	require.NoError(t, err)

	assert.Equal(t, Ack, c.HandleStatusChanged(context.Background(), body))

	var stored models.OrderStatusChangedEvent
	require.NoError(t, statusCache.Get(context.Background(), StatusKey(42), &stored))
	assert.Equal(t, 42, stored.OrderID)
	assert.Equal(t, models.StatusReady, stored.Status)
}

// A status change can arrive before (or instead of) the creation event;
// it must apply on its own.
func TestHandleStatusChanged_IndependentOfCreation(t *testing.T) {
	statusCache := statusTestCache(t)
	c := NewStatusConsumer(statusCache)

	body, err := json.Marshal(models.NewOrderStatusChangedEvent(7, models.StatusCancelled))
	require.NoError(t, err)

	assert.Equal(t, Ack, c.HandleStatusChanged(context.Background(), body))

	var stored models.OrderStatusChangedEvent
	require.NoError(t, statusCache.Get(context.Background(), StatusKey(7), &stored))
	assert.Equal(t, models.StatusCancelled, stored.Status)
}

func TestHandleStatusChanged_MalformedDropped(t *testing.T) {
	c := NewStatusConsumer(statusTestCache(t))

	assert.Equal(t, Drop, c.HandleStatusChanged(context.Background(), []byte("{{")))
	assert.Equal(t, Drop, c.HandleStatusChanged(context.Background(), []byte(`{"status":"READY"}`)))
}
