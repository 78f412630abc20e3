package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cafehub/coffeeshop-go/internal/client"
	"github.com/cafehub/coffeeshop-go/internal/db"
	"github.com/cafehub/coffeeshop-go/internal/models"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	repo          *db.OrderRepository
	productClient *client.ProductClient
}

func NewOrderHandler(repo *db.OrderRepository, productClient *client.ProductClient) *OrderHandler {
	return &OrderHandler{
		repo:          repo,
		productClient: productClient,
	}
}

// HealthCheck returns server status
func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "order-service"})
}

// ListOrders returns all orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.repo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder returns a single order with items
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	order, err := h.repo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrdersByStore returns all orders placed at one store
func (h *OrderHandler) ListOrdersByStore(c *gin.Context) {
	storeID, err := strconv.Atoi(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store ID"})
		return
	}

	orders, err := h.repo.GetByStore(storeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// CreateOrder creates a new order. Each line snapshots the product's
// name, price and preparation time at order time. The order.created
// event is queued in the same transaction as the order itself, so the
// broker being down cannot lose it.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := models.Order{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		StoreID:       req.StoreID,
		OrderDate:     time.Now().UTC(),
		Status:        models.StatusPending,
	}

	var totalPrice float64

	for _, item := range req.Items {
		product, err := h.productClient.GetProduct(item.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		orderItem := models.OrderItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        item.Quantity,
			Price:           product.Price,
			PreparationTime: product.PreparationTime,
		}

		totalPrice += product.Price * float64(item.Quantity)
		order.Items = append(order.Items, orderItem)
	}

	order.TotalPrice = totalPrice
	order.EstimatedCompletionTime = models.EstimatedCompletion(order.OrderDate, order.Items)

	// Legacy flat fields kept for consumers of the old single-item shape.
	if len(order.Items) > 0 {
		order.ProductID = order.Items[0].ProductID
		order.Quantity = order.Items[0].Quantity
	}

	if err := h.repo.Create(&order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("✅ Order #%d created with total $%.2f", order.ID, order.TotalPrice)
	c.JSON(http.StatusCreated, order)
}

// UpdateOrderStatus updates the order status. Any status can follow any
// other; the lifecycle imposes no transition table.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validStatuses := map[string]bool{
		models.StatusPending:    true,
		models.StatusInProgress: true,
		models.StatusReady:      true,
		models.StatusCompleted:  true,
		models.StatusCancelled:  true,
	}
	if !validStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if err := h.repo.UpdateStatus(id, req.Status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order status updated"})
}

// DeleteOrder removes an order
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	if err := h.repo.Delete(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}
