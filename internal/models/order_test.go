package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatedCompletion(t *testing.T) {
	orderDate := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		items   []OrderItem
		wantMin int // minutes after orderDate; -1 means nil
	}{
		{
			name:    "no items leaves estimate unset",
			items:   nil,
			wantMin: -1,
		},
		{
			name:    "empty slice leaves estimate unset",
			items:   []OrderItem{},
			wantMin: -1,
		},
		{
			name:    "single item",
			items:   []OrderItem{{PreparationTime: 5}},
			wantMin: 5,
		},
		{
			name: "two items use the maximum, not the sum",
			items: []OrderItem{
				{PreparationTime: 5},
				{PreparationTime: 12},
			},
			wantMin: 12,
		},
		{
			name: "order of items does not matter",
			items: []OrderItem{
				{PreparationTime: 12},
				{PreparationTime: 5},
				{PreparationTime: 8},
			},
			wantMin: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimatedCompletion(orderDate, tt.items)
			if tt.wantMin < 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, orderDate.Add(time.Duration(tt.wantMin)*time.Minute), *got)
		})
	}
}
