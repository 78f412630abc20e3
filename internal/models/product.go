package models

type Product struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	Stock           int     `json:"stock"`
	PreparationTime int     `json:"preparation_time"` // minutes
	CategoryID      int     `json:"category_id"`
}

type CreateProductRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"required"`
	Stock           int     `json:"stock"`
	PreparationTime int     `json:"preparation_time"`
	CategoryID      int     `json:"category_id"`
}

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"` // COFFEE, ADE, TEA
	Description string `json:"description"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
}
