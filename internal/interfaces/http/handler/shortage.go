package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	shortageapp "github.com/pharmanet/backend/internal/application/shortage"
	"github.com/pharmanet/backend/internal/domain/identity"
	"github.com/pharmanet/backend/internal/interfaces/http/middleware"
)

// ShortageHandler serves network shortage report endpoints
type ShortageHandler struct {
	BaseHandler
	shortageService *shortageapp.Service
}

// NewShortageHandler creates a shortage handler
func NewShortageHandler(shortageService *shortageapp.Service, logger *zap.Logger) *ShortageHandler {
	return &ShortageHandler{
		BaseHandler:     NewBaseHandler(logger),
		shortageService: shortageService,
	}
}

// RegisterRoutes registers shortage routes on the given group
func (h *ShortageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shortages := rg.Group("/shortages")
	{
		shortages.GET("/:id", h.Get)
		shortages.GET("/mine", h.ListMine)

		managed := shortages.Group("", middleware.RequireRoles(identity.RoleShortageManager))
		{
			managed.GET("", h.ListOpen)
			managed.POST("/:id/resolve", h.Resolve)
		}

		branch := shortages.Group("", middleware.RequireRoles(identity.RoleBranchManager))
		{
			branch.POST("/:id/archive", h.Archive)
		}
	}
}

// Get returns a single shortage report
func (h *ShortageHandler) Get(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.shortageService.GetReport(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListOpen returns all unresolved shortage reports
func (h *ShortageHandler) ListOpen(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	views, err := h.shortageService.ListOpen(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// ListMine returns shortage reports raised for the authenticated branch
func (h *ShortageHandler) ListMine(c *gin.Context) {
	branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	views, err := h.shortageService.ListByRequester(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

type resolveShortageRequest struct {
	ProvidedQuantity int64 `json:"provided_quantity" binding:"required,min=1"`
}

// Resolve closes a shortage report with the quantity sourced externally
func (h *ShortageHandler) Resolve(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req resolveShortageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "provided_quantity must be a positive integer")
		return
	}

	if err := h.shortageService.Resolve(c.Request.Context(), id, req.ProvidedQuantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"resolved": true})
}

// Archive hides a resolved report from the requester's default listing
func (h *ShortageHandler) Archive(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.shortageService.Archive(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"archived": true})
}
