package db

import (
	"database/sql"
	"fmt"

	"github.com/cafehub/coffeeshop-go/internal/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

// GetAll returns all products
func (r *ProductRepository) GetAll() ([]models.Product, error) {
	query := `
		SELECT id, name, description, price, stock, preparation_time, category_id
		FROM products ORDER BY id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByCategory returns all products in a category
func (r *ProductRepository) GetByCategory(categoryID int) ([]models.Product, error) {
	query := `
		SELECT id, name, description, price, stock, preparation_time, category_id
		FROM products WHERE category_id = $1 ORDER BY id
	`

	rows, err := r.db.Query(query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by category: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
			&p.PreparationTime, &p.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// GetByID returns a single product
func (r *ProductRepository) GetByID(id int) (*models.Product, error) {
	query := `
		SELECT id, name, description, price, stock, preparation_time, category_id
		FROM products WHERE id = $1
	`

	var p models.Product
	err := r.db.QueryRow(query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.PreparationTime, &p.CategoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}

// Create inserts a new product
func (r *ProductRepository) Create(req models.CreateProductRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, price, stock, preparation_time, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, price, stock, preparation_time, category_id
	`

	var p models.Product
	err := r.db.QueryRow(query, req.Name, req.Description, req.Price, req.Stock,
		req.PreparationTime, req.CategoryID).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.PreparationTime, &p.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &p, nil
}

// Update replaces a product's editable fields
func (r *ProductRepository) Update(id int, req models.CreateProductRequest) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, preparation_time = $5, category_id = $6
		WHERE id = $7
		RETURNING id, name, description, price, stock, preparation_time, category_id
	`

	var p models.Product
	err := r.db.QueryRow(query, req.Name, req.Description, req.Price, req.Stock,
		req.PreparationTime, req.CategoryID, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.PreparationTime, &p.CategoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &p, nil
}

// Delete removes a product
func (r *ProductRepository) Delete(id int) error {
	query := "DELETE FROM products WHERE id = $1"

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("product not found")
	}

	return nil
}

// ApplyLine decrements stock for one order line, at most once per
// (order, product) pair. The stock_adjustments row is the durable
// idempotency marker and commits together with the decrement; the
// decrement itself is a single conditional UPDATE, so two concurrent
// lines for the same product can never drive stock below zero.
func (r *ProductRepository) ApplyLine(orderID, productID, quantity int) (models.StockResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	marker, err := tx.Exec(`
		INSERT INTO stock_adjustments (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, product_id) DO NOTHING
	`, orderID, productID, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to insert stock adjustment: %w", err)
	}

	if n, _ := marker.RowsAffected(); n == 0 {
		return models.StockDuplicate, nil
	}

	result, err := tx.Exec(`
		UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 1 {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return models.StockApplied, nil
	}

	// Decrement didn't match: either the product is gone or stock is too
	// low. Both are per-line rejections; the rollback also discards the
	// marker, so nothing changes.
	var exists bool
	err = tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check product: %w", err)
	}

	if !exists {
		return models.StockProductMissing, nil
	}
	return models.StockInsufficient, nil
}
