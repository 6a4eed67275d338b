package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	transferapp "github.com/pharmanet/backend/internal/application/transfer"
	"github.com/pharmanet/backend/internal/domain/identity"
	"github.com/pharmanet/backend/internal/domain/transfer"
	"github.com/pharmanet/backend/internal/interfaces/http/middleware"
)

// TransferHandler serves the transfer request lifecycle endpoints
type TransferHandler struct {
	BaseHandler
	transferService *transferapp.Service
}

// NewTransferHandler creates a transfer handler
func NewTransferHandler(transferService *transferapp.Service, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		BaseHandler:     NewBaseHandler(logger),
		transferService: transferService,
	}
}

// RegisterRoutes registers transfer routes on the given group
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.GET("/:id", h.Get)
		transfers.GET("", h.ListByStatus)
		transfers.GET("/outgoing", h.ListOutgoing)
		transfers.GET("/incoming", h.ListIncoming)

		branch := transfers.Group("", middleware.RequireRoles(identity.RoleBranchManager))
		{
			branch.POST("", h.Create)
			branch.PUT("/:id/quantity", h.UpdateQuantity)
			branch.POST("/:id/approve", h.Approve)
			branch.POST("/:id/reject", h.Reject)
			branch.POST("/:id/cancel", h.Cancel)
			branch.POST("/:id/receive", h.ConfirmReception)
			branch.POST("/:id/archive", h.Archive)
			branch.DELETE("/:id", h.Delete)
		}

		distribution := transfers.Group("", middleware.RequireRoles(identity.RoleDistribution))
		{
			distribution.POST("/:id/assign-driver", h.AssignDriver)
		}

		delivery := transfers.Group("", middleware.RequireRoles(identity.RoleDelivery))
		{
			delivery.GET("/assigned", h.ListAssigned)
			delivery.POST("/:id/pickup", h.ConfirmPickup)
			delivery.POST("/:id/deliver", h.CompleteDelivery)
		}

		audit := transfers.Group("", middleware.RequireRoles(identity.RoleInventoryManager))
		{
			audit.GET("/pending-audit", h.ListPendingAudit)
			audit.POST("/:id/item-found", h.MarkItemFound)
			audit.POST("/:id/confirm-deficit", h.ConfirmDeficit)
		}
	}
}

type createTransferRequest struct {
	Items []transferapp.LineItem `json:"items" binding:"required,min=1,dive"`
}

// Create submits a batch of line items for the authenticated branch.
// Each item independently becomes a transfer request or a shortage report.
func (h *TransferHandler) Create(c *gin.Context) {
	branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	var req createTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "at least one line item is required")
		return
	}

	results, err := h.transferService.CreateRequests(c.Request.Context(), branchID, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, results)
}

// Get returns a single transfer request
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.transferService.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListOutgoing returns requests submitted by the authenticated branch
func (h *TransferHandler) ListOutgoing(c *gin.Context) {
	branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	views, err := h.transferService.ListByRequester(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// ListIncoming returns requests targeting the authenticated branch as donor
func (h *TransferHandler) ListIncoming(c *gin.Context) {
	branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	views, err := h.transferService.ListByTarget(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// ListAssigned returns requests assigned to the authenticated driver
func (h *TransferHandler) ListAssigned(c *gin.Context) {
	driverID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	views, err := h.transferService.ListByDriver(c.Request.Context(), driverID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// ListByStatus returns requests in the given comma-separated statuses
func (h *TransferHandler) ListByStatus(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	var statuses []transfer.Status
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, transfer.Status(strings.ToUpper(strings.TrimSpace(s))))
		}
	} else {
		statuses = transfer.ActiveStatuses()
	}

	views, err := h.transferService.ListByStatus(c.Request.Context(), statuses, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// ListPendingAudit returns requests flagged for inventory audit
func (h *TransferHandler) ListPendingAudit(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	views, err := h.transferService.ListPendingAudit(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

type updateQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

// UpdateQuantity changes the requested quantity of a pending request
func (h *TransferHandler) UpdateQuantity(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "quantity must be a positive integer")
		return
	}

	if err := h.transferService.UpdateQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"updated": true})
}

type approveRequest struct {
	IssueNumber    string `json:"issue_number" binding:"required"`
	IssuedQuantity int64  `json:"issued_quantity" binding:"required,min=1"`
}

// Approve accepts a pending request as the donor branch
func (h *TransferHandler) Approve(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "issue_number and a positive issued_quantity are required")
		return
	}

	if err := h.transferService.Approve(c.Request.Context(), id, req.IssueNumber, req.IssuedQuantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"approved": true})
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject declines a pending request as the donor branch
func (h *TransferHandler) Reject(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "reason is required")
		return
	}

	if err := h.transferService.Reject(c.Request.Context(), id, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"rejected": true})
}

// Cancel withdraws a pending request as the requester
func (h *TransferHandler) Cancel(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.transferService.Cancel(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"cancelled": true})
}

// Delete removes a terminal request
func (h *TransferHandler) Delete(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.transferService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

type assignDriverRequest struct {
	DriverID uuid.UUID `json:"driver_id" binding:"required"`
}

// AssignDriver hands an approved request to a delivery driver
func (h *TransferHandler) AssignDriver(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "driver_id is required")
		return
	}

	if err := h.transferService.AssignDriver(c.Request.Context(), id, req.DriverID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"assigned": true})
}

// ConfirmPickup records the driver collecting the goods at the donor branch
func (h *TransferHandler) ConfirmPickup(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.transferService.ConfirmPickup(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"picked_up": true})
}

// CompleteDelivery records the driver dropping off at the requesting branch
func (h *TransferHandler) CompleteDelivery(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.transferService.CompleteDelivery(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"delivered": true})
}

type receiveRequest struct {
	ReceiptNumber string `json:"receipt_number" binding:"required"`
}

// ConfirmReception completes the request and credits the requester's stock.
// A receipt that does not match the issued quantity flags the request for
// inventory audit.
func (h *TransferHandler) ConfirmReception(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "receipt_number is required")
		return
	}

	if err := h.transferService.ConfirmReception(c.Request.Context(), id, req.ReceiptNumber); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"completed": true})
}

// Archive hides a terminal request from the requester's default listing
func (h *TransferHandler) Archive(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.transferService.Archive(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"archived": true})
}

type auditNoteRequest struct {
	Note string `json:"note"`
}

// MarkItemFound resolves a discrepancy audit as item located
func (h *TransferHandler) MarkItemFound(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req auditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid audit payload")
		return
	}

	if err := h.transferService.MarkItemFound(c.Request.Context(), id, req.Note); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"resolved": true})
}

// ConfirmDeficit resolves a discrepancy audit as a confirmed loss
func (h *TransferHandler) ConfirmDeficit(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req auditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid audit payload")
		return
	}

	if err := h.transferService.ConfirmDeficit(c.Request.Context(), id, req.Note); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"resolved": true})
}
