package db

import (
	"database/sql"
	"fmt"

	"github.com/cafehub/coffeeshop-go/internal/models"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(database *PostgresDB) *CategoryRepository {
	return &CategoryRepository{db: database.Conn}
}

func (r *CategoryRepository) GetAll() ([]models.Category, error) {
	query := `SELECT id, name, type, description FROM categories ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *CategoryRepository) GetByID(id int) (*models.Category, error) {
	query := `SELECT id, name, type, description FROM categories WHERE id = $1`

	var c models.Category
	err := r.db.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.Type, &c.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) Create(req models.CreateCategoryRequest) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, type, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, type, description
	`

	var c models.Category
	err := r.db.QueryRow(query, req.Name, req.Type, req.Description).
		Scan(&c.ID, &c.Name, &c.Type, &c.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("category not found")
	}

	return nil
}
