package models

import "time"

// OrderCreatedEvent is published after a new order has been committed
// locally. It carries the full item list so the inventory side never has
// to call back into the order service to learn quantities.
type OrderCreatedEvent struct {
	OrderID                 int              `json:"id"`
	ProductID               int              `json:"product_id"`
	Quantity                int              `json:"quantity"`
	TotalPrice              float64          `json:"total_price"`
	CustomerName            string           `json:"customer_name"`
	CustomerEmail           string           `json:"customer_email"`
	OrderDate               time.Time        `json:"order_date"`
	Status                  string           `json:"status"`
	StoreID                 int              `json:"store_id"`
	EstimatedCompletionTime *time.Time       `json:"estimated_completion_time,omitempty"`
	Items                   []OrderItemEvent `json:"items"`
}

type OrderItemEvent struct {
	ID              int     `json:"id"`
	ProductID       int     `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	PreparationTime int     `json:"preparation_time"`
}

// OrderStatusChangedEvent is published on every status update.
type OrderStatusChangedEvent struct {
	OrderID   int       `json:"order_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderCreatedEvent snapshots an order into its wire form.
func NewOrderCreatedEvent(order *Order) OrderCreatedEvent {
	event := OrderCreatedEvent{
		OrderID:                 order.ID,
		ProductID:               order.ProductID,
		Quantity:                order.Quantity,
		TotalPrice:              order.TotalPrice,
		CustomerName:            order.CustomerName,
		CustomerEmail:           order.CustomerEmail,
		OrderDate:               order.OrderDate,
		Status:                  order.Status,
		StoreID:                 order.StoreID,
		EstimatedCompletionTime: order.EstimatedCompletionTime,
	}

	for _, item := range order.Items {
		event.Items = append(event.Items, OrderItemEvent{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			Price:           item.Price,
			PreparationTime: item.PreparationTime,
		})
	}

	return event
}

func NewOrderStatusChangedEvent(orderID int, status string) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderID:   orderID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}
