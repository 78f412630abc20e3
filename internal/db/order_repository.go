package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cafehub/coffeeshop-go/internal/messaging"
	"github.com/cafehub/coffeeshop-go/internal/models"
	"github.com/cafehub/coffeeshop-go/internal/outbox"
)

type OrderRepository struct {
	db     *sql.DB
	outbox *outbox.Repository
}

func NewOrderRepository(database *PostgresDB, outboxRepo *outbox.Repository) *OrderRepository {
	return &OrderRepository{db: database.Conn, outbox: outboxRepo}
}

// Create inserts a new order with its items and queues the order.created
// event in the outbox, all in one transaction. Either the order and its
// event both commit or neither does.
func (r *OrderRepository) Create(order *models.Order) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (product_id, quantity, total_price, customer_name, customer_email,
		                    order_date, status, store_id, estimated_completion_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err = tx.QueryRow(orderQuery,
		order.ProductID,
		order.Quantity,
		order.TotalPrice,
		order.CustomerName,
		order.CustomerEmail,
		order.OrderDate,
		order.Status,
		order.StoreID,
		order.EstimatedCompletionTime,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, price, preparation_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		err = tx.QueryRow(itemQuery,
			order.ID,
			order.Items[i].ProductID,
			order.Items[i].ProductName,
			order.Items[i].Quantity,
			order.Items[i].Price,
			order.Items[i].PreparationTime,
		).Scan(&order.Items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	payload, err := json.Marshal(models.NewOrderCreatedEvent(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order.created event: %w", err)
	}
	if err := r.outbox.InsertTx(tx, messaging.OrderCreatedQueue, payload); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAll returns all orders
func (r *OrderRepository) GetAll() ([]models.Order, error) {
	query := `
		SELECT id, product_id, quantity, total_price, customer_name, customer_email,
		       order_date, status, store_id, estimated_completion_time
		FROM orders ORDER BY id DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// GetByStore returns all orders for one store
func (r *OrderRepository) GetByStore(storeID int) ([]models.Order, error) {
	query := `
		SELECT id, product_id, quantity, total_price, customer_name, customer_email,
		       order_date, status, store_id, estimated_completion_time
		FROM orders WHERE store_id = $1 ORDER BY id DESC
	`

	rows, err := r.db.Query(query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by store: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(&o.ID, &o.ProductID, &o.Quantity, &o.TotalPrice, &o.CustomerName,
			&o.CustomerEmail, &o.OrderDate, &o.Status, &o.StoreID, &o.EstimatedCompletionTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// GetByID returns a single order with items
func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	orderQuery := `
		SELECT id, product_id, quantity, total_price, customer_name, customer_email,
		       order_date, status, store_id, estimated_completion_time
		FROM orders WHERE id = $1
	`

	var order models.Order
	err := r.db.QueryRow(orderQuery, id).
		Scan(&order.ID, &order.ProductID, &order.Quantity, &order.TotalPrice, &order.CustomerName,
			&order.CustomerEmail, &order.OrderDate, &order.Status, &order.StoreID,
			&order.EstimatedCompletionTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, quantity, price, preparation_time
		FROM order_items WHERE order_id = $1 ORDER BY id
	`

	rows, err := r.db.Query(itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Price, &item.PreparationTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	return &order, rows.Err()
}

// UpdateStatus sets the order status and queues the order.status.changed
// event in the same transaction. No transition checks: any status can
// follow any other.
func (r *OrderRepository) UpdateStatus(id int, status string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("order not found")
	}

	payload, err := json.Marshal(models.NewOrderStatusChangedEvent(id, status))
	if err != nil {
		return fmt.Errorf("failed to marshal order.status.changed event: %w", err)
	}
	if err := r.outbox.InsertTx(tx, messaging.OrderStatusChangedQueue, payload); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes an order and its items
func (r *OrderRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("order not found")
	}

	return tx.Commit()
}
