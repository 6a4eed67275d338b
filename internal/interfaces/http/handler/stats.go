package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	reportapp "github.com/pharmanet/backend/internal/application/report"
)

// StatsHandler serves aggregate reporting endpoints
type StatsHandler struct {
	BaseHandler
	statsService *reportapp.StatsService
}

// NewStatsHandler creates a stats handler
func NewStatsHandler(statsService *reportapp.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		BaseHandler:  NewBaseHandler(logger),
		statsService: statsService,
	}
}

// RegisterRoutes registers stats routes on the given group
func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stats := rg.Group("/stats")
	{
		stats.GET("/dashboard", h.Dashboard)
		stats.GET("/top-products", h.TopProducts)
		stats.GET("/branch-activity", h.BranchActivity)
	}
}

// Dashboard returns the network-wide request counters
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// TopProducts returns the most requested products
func (h *StatsHandler) TopProducts(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.BadRequest(c, "limit must be an integer between 1 and 100")
			return
		}
		limit = parsed
	}

	products, err := h.statsService.TopProducts(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// BranchActivity returns per-branch transfer traffic
func (h *StatsHandler) BranchActivity(c *gin.Context) {
	activity, err := h.statsService.BranchActivity(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}
