package handlers

import (
	"net/http"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/api/middleware"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderHandler handles order assignment and the delivery transitions.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// AssignOrderRequest represents an order assignment request
type AssignOrderRequest struct {
	RequestID        string `json:"requestId" binding:"required,objectid"`
	DeliveryBoyID    string `json:"deliveryBoyId" binding:"required,objectid"`
	DeliveryLocation string `json:"deliveryLocation" binding:"required"`
}

// OrderTransitionRequest names the order an advancing transition applies to
type OrderTransitionRequest struct {
	OrderID string `json:"orderId" binding:"required,objectid"`
}

// HandleAssignOrder creates an order from an accepted request and claims the
// chosen delivery boy
func (h *OrderHandler) HandleAssignOrder(c *gin.Context) {
	var req AssignOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	requestID, _ := primitive.ObjectIDFromHex(req.RequestID)
	boyID, _ := primitive.ObjectIDFromHex(req.DeliveryBoyID)

	order, err := h.orders.Assign(c, requestID, boyID, req.DeliveryLocation)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "order assigned", "order": order})
}

// HandleSetOrderPickedUp advances an on-going order to picked-up
func (h *OrderHandler) HandleSetOrderPickedUp(c *gin.Context) {
	var req OrderTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	orderID, _ := primitive.ObjectIDFromHex(req.OrderID)
	order, err := h.orders.MarkPickedUp(c, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "order picked up", "order": order})
}

// HandleSetOrderDelivered completes an order
func (h *OrderHandler) HandleSetOrderDelivered(c *gin.Context) {
	var req OrderTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	orderID, _ := primitive.ObjectIDFromHex(req.OrderID)
	order, err := h.orders.MarkDelivered(c, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "order delivered", "order": order})
}

// HandleGetOrders returns the authenticated user's orders. A user with no
// orders gets 404, not an empty list.
func (h *OrderHandler) HandleGetOrders(c *gin.Context) {
	userUsername := c.GetString(middleware.ContextUsername)
	orders, err := h.orders.ListForUser(c, userUsername)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if len(orders) == 0 {
		fail(c, http.StatusNotFound, "no orders found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "assignedOrders": orders})
}

// RegisterRoutes registers the handler's routes
func (h *OrderHandler) RegisterRoutes(router *gin.Engine, userAuth, boyAuth gin.HandlerFunc) {
	group := router.Group("/order")
	{
		group.POST("/assignOrder", userAuth, h.HandleAssignOrder)
		group.POST("/setOrderPickedUp", boyAuth, h.HandleSetOrderPickedUp)
		group.POST("/setOrderDelivered", boyAuth, h.HandleSetOrderDelivered)
		group.GET("/getOrders", userAuth, h.HandleGetOrders)
	}
}
