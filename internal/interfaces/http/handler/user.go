package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	identityapp "github.com/pharmanet/backend/internal/application/identity"
	"github.com/pharmanet/backend/internal/interfaces/http/middleware"
)

// UserHandler serves user administration endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a user handler
func NewUserHandler(userService *identityapp.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// RegisterRoutes registers user routes on the given group
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("/drivers", h.ListDrivers)

		admin := users.Group("", middleware.RequireRoles())
		{
			admin.POST("", h.Create)
			admin.GET("", h.List)
			admin.GET("/:id", h.Get)
			admin.PUT("/:id/password", h.ChangePassword)
			admin.DELETE("/:id", h.Delete)
		}
	}
}

type createUserRequest struct {
	Username    string     `json:"username" binding:"required"`
	Password    string     `json:"password" binding:"required,min=8"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role" binding:"required"`
	BranchID    *uuid.UUID `json:"branch_id"`
}

// Create registers a new user
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid user payload: "+err.Error())
		return
	}

	info, err := h.userService.CreateUser(c.Request.Context(), identityapp.CreateUserInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		BranchID:    req.BranchID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// Get returns a single user by ID
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	info, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}

// List returns users matching the filter
func (h *UserHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}

// ListDrivers returns all delivery users
func (h *UserHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.userService.ListDrivers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, drivers)
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ChangePassword replaces a user's password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "password must be at least 8 characters")
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), id, req.Password); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"updated": true})
}

// Delete removes a user
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
