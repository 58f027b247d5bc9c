package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fulfillment/internal/domain/model"
	"github.com/polkiloo/fulfillment/internal/server/http/dto"
)

// InventoryHandler manages stock endpoints.
type InventoryHandler struct {
	facade InventoryFacade
}

// NewInventoryHandler constructs InventoryHandler.
func NewInventoryHandler(facade InventoryFacade) *InventoryHandler {
	return &InventoryHandler{facade: facade}
}

// Get handles GET /api/inventory/:productId.
func (h *InventoryHandler) Get(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	rec, err := h.facade.Stock(c.Request.Context(), productID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStockResponse(*rec))
}

// LowStock handles GET /api/inventory/low-stock/:threshold.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	threshold, err := strconv.Atoi(c.Param("threshold"))
	if err != nil {
		badRequest(c, "invalid threshold")
		return
	}
	records, err := h.facade.LowStock(c.Request.Context(), threshold)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStockListResponse(records))
}

// Initialize handles POST /api/inventory.
func (h *InventoryHandler) Initialize(c *gin.Context) {
	var req dto.InitializeStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	rec, err := h.facade.InitializeStock(c.Request.Context(), req.ProductID, *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewStockResponse(*rec))
}

// Update handles PUT /api/inventory/:productId. The body either sets an
// absolute quantity or applies a signed delta.
func (h *InventoryHandler) Update(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	var req dto.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if (req.Quantity == nil) == (req.Delta == nil) {
		badRequest(c, "exactly one of quantity or delta is required")
		return
	}

	ctx := c.Request.Context()
	var (
		rec *model.StockRecord
		err error
	)
	if req.Quantity != nil {
		rec, err = h.facade.SetStock(ctx, productID, *req.Quantity)
	} else {
		rec, err = h.facade.AdjustStock(ctx, productID, *req.Delta)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStockResponse(*rec))
}
