package db

import (
	"database/sql"
	"fmt"

	"github.com/cafehub/coffeeshop-go/internal/models"
)

type StoreRepository struct {
	db *sql.DB
}

func NewStoreRepository(database *PostgresDB) *StoreRepository {
	return &StoreRepository{db: database.Conn}
}

func (r *StoreRepository) GetAll() ([]models.Store, error) {
	query := `SELECT id, name, location, phone, status FROM stores ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Location, &s.Phone, &s.Status); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}

	return stores, rows.Err()
}

func (r *StoreRepository) GetByID(id int) (*models.Store, error) {
	query := `SELECT id, name, location, phone, status FROM stores WHERE id = $1`

	var s models.Store
	err := r.db.QueryRow(query, id).Scan(&s.ID, &s.Name, &s.Location, &s.Phone, &s.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	return &s, nil
}

func (r *StoreRepository) Create(req models.CreateStoreRequest) (*models.Store, error) {
	query := `
		INSERT INTO stores (name, location, phone, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, location, phone, status
	`

	var s models.Store
	err := r.db.QueryRow(query, req.Name, req.Location, req.Phone, req.Status).
		Scan(&s.ID, &s.Name, &s.Location, &s.Phone, &s.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return &s, nil
}

func (r *StoreRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("store not found")
	}

	return nil
}
