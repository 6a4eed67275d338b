package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	inventoryapp "github.com/pharmanet/backend/internal/application/inventory"
	"github.com/pharmanet/backend/internal/domain/identity"
	"github.com/pharmanet/backend/internal/interfaces/http/middleware"
)

// StockHandler serves the per-branch stock ledger endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a stock handler
func NewStockHandler(stockService *inventoryapp.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		BaseHandler:  NewBaseHandler(logger),
		stockService: stockService,
	}
}

// RegisterRoutes registers stock routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("/branches/:id", h.ListByBranch)
		stock.GET("/branches/:id/products/:code", h.GetQuantity)
		stock.GET("/products/:code", h.ListByProduct)

		managed := stock.Group("", middleware.RequireRoles(
			identity.RoleInventoryManager, identity.RoleBranchManager))
		{
			managed.PUT("/branches/:id/products/:code", h.SetQuantity)
			managed.POST("/branches/:id/products/:code/adjust", h.AdjustQuantity)
			managed.POST("/import", h.Import)
			managed.DELETE("/branches/:id/products/:code", h.RemoveEntry)
		}
	}
}

// GetQuantity returns the on-hand quantity for a branch-product pair
func (h *StockHandler) GetQuantity(c *gin.Context) {
	branchID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}
	code := c.Param("code")

	quantity, err := h.stockService.GetQuantity(c.Request.Context(), branchID, code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"branch_id":    branchID,
		"product_code": code,
		"quantity":     quantity,
	})
}

// ListByBranch returns all stock entries of one branch
func (h *StockHandler) ListByBranch(c *gin.Context) {
	branchID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	entries, err := h.stockService.ListByBranch(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// ListByProduct returns network-wide stock of one product
func (h *StockHandler) ListByProduct(c *gin.Context) {
	entries, err := h.stockService.ListByProduct(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

type setQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"min=0"`
}

// SetQuantity overwrites the on-hand quantity for a branch-product pair
func (h *StockHandler) SetQuantity(c *gin.Context) {
	branchID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "quantity must be a non-negative integer")
		return
	}

	if err := h.stockService.SetQuantity(c.Request.Context(), branchID, c.Param("code"), req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"quantity": req.Quantity})
}

type adjustQuantityRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

// AdjustQuantity applies a signed delta to the on-hand quantity
func (h *StockHandler) AdjustQuantity(c *gin.Context) {
	branchID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req adjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "delta must be a non-zero integer")
		return
	}

	quantity, err := h.stockService.AdjustQuantity(c.Request.Context(), branchID, c.Param("code"), req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"quantity": quantity})
}

type stockImportRequest struct {
	Mode  string                         `json:"mode" binding:"required,oneof=replace merge"`
	Lines []inventoryapp.StockImportLine `json:"lines" binding:"required,min=1,dive"`
}

// Import applies a batch of stock rows in replace or merge mode
func (h *StockHandler) Import(c *gin.Context) {
	var req stockImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid import payload: "+err.Error())
		return
	}

	stats, err := h.stockService.ImportStocks(c.Request.Context(), req.Lines, inventoryapp.ImportMode(req.Mode))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// RemoveEntry deletes a stock entry
func (h *StockHandler) RemoveEntry(c *gin.Context) {
	branchID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.stockService.RemoveEntry(c.Request.Context(), branchID, c.Param("code")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
