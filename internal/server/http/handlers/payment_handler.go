package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fulfillment/internal/server/http/dto"
)

// PaymentHandler manages payment endpoints.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	dto.RegisterValidators()
	return &PaymentHandler{facade: facade}
}

// Process handles POST /api/payments/process.
func (h *PaymentHandler) Process(c *gin.Context) {
	var req dto.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	receipt, err := h.facade.ConfirmPayment(c.Request.Context(), req.OrderID, req.Amount, req.Method)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProcessPaymentResponse(receipt))
}

// ByOrder handles GET /api/payments/by-order/:orderId.
func (h *PaymentHandler) ByOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	payment, err := h.facade.PaymentForOrder(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaymentResponse(payment))
}

// ShipmentHandler manages shipment endpoints.
type ShipmentHandler struct {
	facade ShipmentFacade
}

func NewShipmentHandler(facade ShipmentFacade) *ShipmentHandler {
	return &ShipmentHandler{facade: facade}
}

// ByOrder handles GET /api/shipments/by-order/:orderId.
func (h *ShipmentHandler) ByOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	shipment, err := h.facade.ShipmentForOrder(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewShipmentResponse(shipment))
}
