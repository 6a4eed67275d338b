package transfer

import (
	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/transfer"
)

// LineItem is one product-quantity pair in a bulk submission
type LineItem struct {
	ProductCode string `json:"product_code"`
	Quantity    int64  `json:"quantity"`
}

// Outcome describes what happened to one submitted line item
type Outcome string

const (
	OutcomeRequestCreated   Outcome = "REQUEST_CREATED"
	OutcomeShortageReported Outcome = "SHORTAGE_REPORTED"
)

// CreateResult is the per-item result of a bulk submission. When a donor
// was found the request fields are set; when the network cannot fulfill
// the item a shortage report is opened instead.
type CreateResult struct {
	ProductCode      string     `json:"product_code"`
	Quantity         int64      `json:"quantity"`
	Outcome          Outcome    `json:"outcome"`
	RequestID        *uuid.UUID `json:"request_id,omitempty"`
	TargetBranchID   *uuid.UUID `json:"target_branch_id,omitempty"`
	ShortageReportID *uuid.UUID `json:"shortage_report_id,omitempty"`
}

// RequestView is the read projection of a transfer request
type RequestView struct {
	ID                  uuid.UUID            `json:"id"`
	RequesterBranchID   uuid.UUID            `json:"requester_branch_id"`
	TargetBranchID      uuid.UUID            `json:"target_branch_id"`
	ProductCode         string               `json:"product_code"`
	RequestedQuantity   int64                `json:"requested_quantity"`
	IssuedQuantity      *int64               `json:"issued_quantity,omitempty"`
	Status              transfer.Status      `json:"status"`
	CreatedAt           int64                `json:"created_at"`
	UpdatedAt           int64                `json:"updated_at"`
	ExpiresAt           int64                `json:"expires_at"`
	RespondedAt         *int64               `json:"responded_at,omitempty"`
	PickedUpAt          *int64               `json:"picked_up_at,omitempty"`
	DeliveredAt         *int64               `json:"delivered_at,omitempty"`
	DriverID            *uuid.UUID           `json:"driver_id,omitempty"`
	IssueNumber         string               `json:"issue_number,omitempty"`
	ReceiptNumber       string               `json:"receipt_number,omitempty"`
	RejectionReason     string               `json:"rejection_reason,omitempty"`
	AttemptedBranchIDs  []uuid.UUID          `json:"attempted_branch_ids"`
	InventoryStatus     transfer.AuditStatus `json:"inventory_status,omitempty"`
	InventoryNote       string               `json:"inventory_note,omitempty"`
	ArchivedByRequester bool                 `json:"archived_by_requester"`
}

// NewRequestView maps a domain request to its read projection
func NewRequestView(r *transfer.Request) RequestView {
	view := RequestView{
		ID:                  r.ID,
		RequesterBranchID:   r.RequesterBranchID,
		TargetBranchID:      r.TargetBranchID,
		ProductCode:         r.ProductCode,
		RequestedQuantity:   r.RequestedQuantity,
		IssuedQuantity:      r.IssuedQuantity,
		Status:              r.Status,
		CreatedAt:           r.CreatedAt.UnixMilli(),
		UpdatedAt:           r.UpdatedAt.UnixMilli(),
		ExpiresAt:           r.ExpiresAt.UnixMilli(),
		DriverID:            r.DriverID,
		IssueNumber:         r.IssueNumber,
		ReceiptNumber:       r.ReceiptNumber,
		RejectionReason:     r.RejectionReason,
		AttemptedBranchIDs:  r.AttemptedBranchIDs,
		InventoryStatus:     r.InventoryStatus,
		InventoryNote:       r.InventoryNote,
		ArchivedByRequester: r.ArchivedByRequester,
	}
	if r.RespondedAt != nil {
		ms := r.RespondedAt.UnixMilli()
		view.RespondedAt = &ms
	}
	if r.PickedUpAt != nil {
		ms := r.PickedUpAt.UnixMilli()
		view.PickedUpAt = &ms
	}
	if r.DeliveredAt != nil {
		ms := r.DeliveredAt.UnixMilli()
		view.DeliveredAt = &ms
	}
	return view
}
