package models

type Store struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
}

type CreateStoreRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
}
