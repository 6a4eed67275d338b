package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/interfaces/http/dto"
	"github.com/pharmanet/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides response helpers shared by all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// Success writes a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 response with data and pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created writes a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error response with an explicit API code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	status := dto.GetHTTPStatus(code)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest writes a 400 validation error
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeValidation, message)
}

// HandleError maps a domain error to an API error response
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, code, domainErr.Message)
		return
	}

	h.logger.Error("unhandled error",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err))
	h.Error(c, dto.ErrCodeInternal, "internal server error")
}

// bindUUIDParam parses a UUID path parameter
func (h *BaseHandler) bindUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// bindFilter binds common list query parameters into a domain filter
func (h *BaseHandler) bindFilter(c *gin.Context) (shared.Filter, bool) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid query parameters: "+err.Error())
		return shared.Filter{}, false
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return filter, true
}

// currentUserID returns the authenticated user's ID from the context
func (h *BaseHandler) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(middleware.ContextUserIDKey)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.Error(c, dto.ErrCodeUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// currentBranchID returns the authenticated user's branch, if bound to one
func (h *BaseHandler) currentBranchID(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.GetString(middleware.ContextBranchIDKey)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.Error(c, dto.ErrCodeUnauthorized, "invalid branch binding")
		return nil, false
	}
	return &id, true
}

// requireBranch returns the authenticated user's branch or fails the request
func (h *BaseHandler) requireBranch(c *gin.Context) (uuid.UUID, bool) {
	branchID, ok := h.currentBranchID(c)
	if !ok {
		return uuid.Nil, false
	}
	if branchID == nil {
		h.Error(c, dto.ErrCodeForbidden, "user is not bound to a branch")
		return uuid.Nil, false
	}
	return *branchID, true
}

// currentRole returns the authenticated user's role
func (h *BaseHandler) currentRole(c *gin.Context) string {
	return c.GetString(middleware.ContextRoleKey)
}
