package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Producers and consumers deploy independently; a consumer must accept
// payloads with fields it has never heard of and without optional ones.
func TestOrderCreatedEvent_DecodeTolerant(t *testing.T) {
	body := []byte(`{
		"id": 12,
		"customer_name": "Kim",
		"order_date": "2025-03-14T09:30:00Z",
		"status": "PENDING",
		"some_future_field": {"nested": true},
		"items": [
			{"product_id": 3, "product_name": "Americano", "quantity": 2, "price": 4.5,
			 "preparation_time": 5, "another_new_field": "x"}
		]
	}`)

	var event OrderCreatedEvent
	require.NoError(t, json.Unmarshal(body, &event))

	assert.Equal(t, 12, event.OrderID)
	assert.Nil(t, event.EstimatedCompletionTime, "absent optional stays unset")
	assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), event.OrderDate)
	require.Len(t, event.Items, 1)
	assert.Equal(t, 3, event.Items[0].ProductID)
	assert.Equal(t, 2, event.Items[0].Quantity)
	assert.Equal(t, 5, event.Items[0].PreparationTime)
}

func TestNewOrderCreatedEvent_Snapshot(t *testing.T) {
	eta := time.Date(2025, 3, 14, 9, 42, 0, 0, time.UTC)
	order := &Order{
		ID:                      12,
		CustomerName:            "Kim",
		TotalPrice:              9.0,
		Status:                  StatusPending,
		EstimatedCompletionTime: &eta,
		Items: []OrderItem{
			{ID: 1, ProductID: 3, ProductName: "Americano", Quantity: 2, Price: 4.5, PreparationTime: 5},
		},
	}

	event := NewOrderCreatedEvent(order)

	assert.Equal(t, 12, event.OrderID)
	require.NotNil(t, event.EstimatedCompletionTime)
	assert.Equal(t, eta, *event.EstimatedCompletionTime)
	require.Len(t, event.Items, 1)
	assert.Equal(t, "Americano", event.Items[0].ProductName)
	assert.Equal(t, 5, event.Items[0].PreparationTime)
}
