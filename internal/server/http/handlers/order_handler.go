package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fulfillment/internal/domain/model"
	"github.com/polkiloo/fulfillment/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), req.UserID, req.AddressID, req.LineRequests())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateOrderResponse{OrderID: order.ID, Total: order.Total, Status: string(order.Status)})
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}

// ListByUser handles GET /api/orders/user/:userId.
func (h *OrderHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	orders, err := h.facade.ListOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderListResponse(orders))
}

// ListByStatus handles GET /api/orders/status/:status.
func (h *OrderHandler) ListByStatus(c *gin.Context) {
	status, err := model.ParseOrderStatus(c.Param("status"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	orders, err := h.facade.ListOrdersByStatus(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderListResponse(orders))
}

// AdvanceStatus handles PUT /api/orders/:id/status/:next.
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	next, err := model.ParseOrderStatus(c.Param("next"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	order, err := h.facade.AdvanceShippingStatus(c.Request.Context(), id, next)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.CancelOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderStatusResponse{OrderID: order.ID, Status: string(order.Status)})
}
