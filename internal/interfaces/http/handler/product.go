package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/pharmanet/backend/internal/application/catalog"
	"github.com/pharmanet/backend/internal/domain/catalog"
	"github.com/pharmanet/backend/internal/domain/identity"
	"github.com/pharmanet/backend/internal/interfaces/http/middleware"
)

// ProductHandler serves product catalogue endpoints
type ProductHandler struct {
	BaseHandler
	catalogService *catalogapp.Service
}

// NewProductHandler creates a product handler
func NewProductHandler(catalogService *catalogapp.Service, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// RegisterRoutes registers product routes on the given group
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/barcode/:barcode", h.GetByBarcode)
		products.GET("/:code", h.Get)

		managed := products.Group("", middleware.RequireRoles(identity.RoleInventoryManager))
		{
			managed.POST("", h.Create)
			managed.POST("/import", h.Import)
			managed.PUT("/:code", h.Update)
			managed.DELETE("/:code", h.Delete)
		}
	}
}

type productView struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Barcode      string    `json:"barcode,omitempty"`
	RequiresCold bool      `json:"requires_cold"`
}

func newProductView(p *catalog.Product) productView {
	return productView{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Barcode:      p.Barcode,
		RequiresCold: p.RequiresCold,
	}
}

type productRequest struct {
	Code         string `json:"code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Barcode      string `json:"barcode"`
	RequiresCold bool   `json:"requires_cold"`
}

func (r productRequest) toInput() catalogapp.ProductInput {
	return catalogapp.ProductInput{
		Code:         r.Code,
		Name:         r.Name,
		Barcode:      r.Barcode,
		RequiresCold: r.RequiresCold,
	}
}

// Create registers a new catalogue product
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid product payload: "+err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, newProductView(product))
}

// Update modifies an existing product identified by its code
func (h *ProductHandler) Update(c *gin.Context) {
	code := c.Param("code")

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid product payload: "+err.Error())
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), code, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newProductView(product))
}

// Get returns a single product by code
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newProductView(product))
}

// GetByBarcode returns a single product by its barcode
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	product, err := h.catalogService.GetProductByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newProductView(product))
}

// List returns products matching the filter
func (h *ProductHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, newProductView(&products[i]))
	}
	h.Success(c, views)
}

type importRequest struct {
	Products []productRequest `json:"products" binding:"required,min=1,dive"`
}

// Import upserts a batch of catalogue products
func (h *ProductHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid import payload: "+err.Error())
		return
	}

	inputs := make([]catalogapp.ProductInput, 0, len(req.Products))
	for _, p := range req.Products {
		inputs = append(inputs, p.toInput())
	}

	stats, err := h.catalogService.ImportProducts(c.Request.Context(), inputs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Delete removes a product from the catalogue
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("code")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
