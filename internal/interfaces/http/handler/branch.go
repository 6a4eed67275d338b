package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/pharmanet/backend/internal/application/catalog"
	"github.com/pharmanet/backend/internal/domain/catalog"
	"github.com/pharmanet/backend/internal/interfaces/http/middleware"
)

// BranchHandler serves branch network endpoints
type BranchHandler struct {
	BaseHandler
	catalogService *catalogapp.Service
}

// NewBranchHandler creates a branch handler
func NewBranchHandler(catalogService *catalogapp.Service, logger *zap.Logger) *BranchHandler {
	return &BranchHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// RegisterRoutes registers branch routes on the given group
func (h *BranchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	branches := rg.Group("/branches")
	{
		branches.GET("", h.List)
		branches.GET("/:id", h.Get)

		admin := branches.Group("", middleware.RequireRoles())
		{
			admin.POST("", h.Create)
			admin.POST("/import", h.Import)
			admin.PUT("/:id", h.Update)
			admin.DELETE("/:id", h.Delete)
		}
	}
}

type branchView struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Lat     float64   `json:"lat"`
	Lng     float64   `json:"lng"`
}

func newBranchView(b *catalog.Branch) branchView {
	return branchView{
		ID:      b.ID,
		Name:    b.Name,
		Address: b.Address,
		Lat:     b.Location.Lat,
		Lng:     b.Location.Lng,
	}
}

type branchRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat" binding:"min=-90,max=90"`
	Lng     float64 `json:"lng" binding:"min=-180,max=180"`
}

// Create registers a new branch
func (h *BranchHandler) Create(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid branch payload: "+err.Error())
		return
	}

	branch, err := h.catalogService.CreateBranch(c.Request.Context(), catalogapp.BranchInput{
		Name:    req.Name,
		Address: req.Address,
		Lat:     req.Lat,
		Lng:     req.Lng,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, newBranchView(branch))
}

// Update modifies an existing branch
func (h *BranchHandler) Update(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid branch payload: "+err.Error())
		return
	}

	branch, err := h.catalogService.UpdateBranch(c.Request.Context(), id, catalogapp.BranchInput{
		Name:    req.Name,
		Address: req.Address,
		Lat:     req.Lat,
		Lng:     req.Lng,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newBranchView(branch))
}

// Get returns a single branch
func (h *BranchHandler) Get(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	branch, err := h.catalogService.GetBranch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newBranchView(branch))
}

// List returns branches matching the filter
func (h *BranchHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	branches, err := h.catalogService.ListBranches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]branchView, 0, len(branches))
	for i := range branches {
		views = append(views, newBranchView(&branches[i]))
	}
	h.Success(c, views)
}

type branchImportRequest struct {
	Branches []branchRequest `json:"branches" binding:"required,min=1,dive"`
}

// Import upserts a batch of branches keyed by name
func (h *BranchHandler) Import(c *gin.Context) {
	var req branchImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid import payload: "+err.Error())
		return
	}

	inputs := make([]catalogapp.BranchInput, 0, len(req.Branches))
	for _, b := range req.Branches {
		inputs = append(inputs, catalogapp.BranchInput{
			Name:    b.Name,
			Address: b.Address,
			Lat:     b.Lat,
			Lng:     b.Lng,
		})
	}

	stats, err := h.catalogService.ImportBranches(c.Request.Context(), inputs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Delete removes a branch
func (h *BranchHandler) Delete(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteBranch(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
