package models

import "time"

// Order statuses. Transitions are not enforced; status is set directly
// via the status update endpoint.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusReady      = "READY"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

type Order struct {
	ID                      int         `json:"id"`
	ProductID               int         `json:"product_id"`
	Quantity                int         `json:"quantity"`
	TotalPrice              float64     `json:"total_price"`
	CustomerName            string      `json:"customer_name"`
	CustomerEmail           string      `json:"customer_email"`
	OrderDate               time.Time   `json:"order_date"`
	Status                  string      `json:"status"`
	StoreID                 int         `json:"store_id"`
	EstimatedCompletionTime *time.Time  `json:"estimated_completion_time,omitempty"`
	Items                   []OrderItem `json:"items"`
}

// OrderItem is a snapshot of catalog state at order time. Name, price and
// preparation time are copied from the product when the order is created
// and never re-looked-up afterwards.
type OrderItem struct {
	ID              int     `json:"id"`
	OrderID         int     `json:"order_id"`
	ProductID       int     `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	PreparationTime int     `json:"preparation_time"` // minutes
}

type CreateOrderRequest struct {
	CustomerName  string                   `json:"customer_name" binding:"required"`
	CustomerEmail string                   `json:"customer_email"`
	StoreID       int                      `json:"store_id"`
	Items         []CreateOrderItemRequest `json:"items" binding:"required"`
}

type CreateOrderItemRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required"`
}

// EstimatedCompletion returns orderDate plus the longest item preparation
// time. Items are prepared in parallel, so the slowest one dominates.
// Returns nil when there are no items.
func EstimatedCompletion(orderDate time.Time, items []OrderItem) *time.Time {
	if len(items) == 0 {
		return nil
	}

	maxPrep := 0
	for _, item := range items {
		if item.PreparationTime > maxPrep {
			maxPrep = item.PreparationTime
		}
	}

	t := orderDate.Add(time.Duration(maxPrep) * time.Minute)
	return &t
}
