package transfer

import (
	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// Event types for the transfer domain
const (
	EventTypeRequestCreated      = "transfer.request_created"
	EventTypeRequestApproved     = "transfer.request_approved"
	EventTypeRequestRejected     = "transfer.request_rejected"
	EventTypeRequestCancelled    = "transfer.request_cancelled"
	EventTypeRequestExpired      = "transfer.request_expired"
	EventTypeDriverAssigned      = "transfer.driver_assigned"
	EventTypeRequestPickedUp     = "transfer.request_picked_up"
	EventTypeRequestDelivered    = "transfer.request_delivered"
	EventTypeRequestCompleted    = "transfer.request_completed"
	EventTypeDiscrepancyResolved = "transfer.discrepancy_resolved"
)

const aggregateType = "TransferRequest"

// RequestEvent carries the fields shared by every request lifecycle event
type RequestEvent struct {
	shared.BaseDomainEvent
	RequesterBranchID uuid.UUID `json:"requester_branch_id"`
	TargetBranchID    uuid.UUID `json:"target_branch_id"`
	ProductCode       string    `json:"product_code"`
	RequestedQuantity int64     `json:"requested_quantity"`
	Status            Status    `json:"status"`
}

func newRequestEvent(eventType string, r *Request) RequestEvent {
	return RequestEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(eventType, aggregateType, r.ID),
		RequesterBranchID: r.RequesterBranchID,
		TargetBranchID:    r.TargetBranchID,
		ProductCode:       r.ProductCode,
		RequestedQuantity: r.RequestedQuantity,
		Status:            r.Status,
	}
}

// Recipients returns the branches that should be notified of the event
func (e *RequestEvent) Recipients() []uuid.UUID {
	if e.RequesterBranchID == e.TargetBranchID {
		return []uuid.UUID{e.RequesterBranchID}
	}
	return []uuid.UUID{e.RequesterBranchID, e.TargetBranchID}
}

// RequestCreatedEvent is emitted when a request enters PENDING with donor
// stock reserved.
type RequestCreatedEvent struct {
	RequestEvent
}

// NewRequestCreatedEvent creates a new RequestCreatedEvent
func NewRequestCreatedEvent(r *Request) *RequestCreatedEvent {
	return &RequestCreatedEvent{RequestEvent: newRequestEvent(EventTypeRequestCreated, r)}
}

// RequestApprovedEvent is emitted when the donor approves; a shortfall
// marks the request for inventory audit.
type RequestApprovedEvent struct {
	RequestEvent
	IssueNumber    string `json:"issue_number"`
	IssuedQuantity int64  `json:"issued_quantity"`
	Shortfall      int64  `json:"shortfall"`
}

// NewRequestApprovedEvent creates a new RequestApprovedEvent
func NewRequestApprovedEvent(r *Request) *RequestApprovedEvent {
	return &RequestApprovedEvent{
		RequestEvent:   newRequestEvent(EventTypeRequestApproved, r),
		IssueNumber:    r.IssueNumber,
		IssuedQuantity: r.ReceivedQuantity(),
		Shortfall:      r.Shortfall(),
	}
}

// RequestRejectedEvent is emitted when the donor rejects a pending request
type RequestRejectedEvent struct {
	RequestEvent
	Reason string `json:"reason"`
}

// NewRequestRejectedEvent creates a new RequestRejectedEvent
func NewRequestRejectedEvent(r *Request) *RequestRejectedEvent {
	return &RequestRejectedEvent{
		RequestEvent: newRequestEvent(EventTypeRequestRejected, r),
		Reason:       r.RejectionReason,
	}
}

// RequestCancelledEvent is emitted when the requester withdraws a pending request
type RequestCancelledEvent struct {
	RequestEvent
}

// NewRequestCancelledEvent creates a new RequestCancelledEvent
func NewRequestCancelledEvent(r *Request) *RequestCancelledEvent {
	return &RequestCancelledEvent{RequestEvent: newRequestEvent(EventTypeRequestCancelled, r)}
}

// RequestExpiredEvent is emitted when the approval window runs out
type RequestExpiredEvent struct {
	RequestEvent
}

// NewRequestExpiredEvent creates a new RequestExpiredEvent
func NewRequestExpiredEvent(r *Request) *RequestExpiredEvent {
	return &RequestExpiredEvent{RequestEvent: newRequestEvent(EventTypeRequestExpired, r)}
}

// DriverAssignedEvent is emitted when distribution assigns a driver
type DriverAssignedEvent struct {
	RequestEvent
	DriverID uuid.UUID `json:"driver_id"`
}

// NewDriverAssignedEvent creates a new DriverAssignedEvent
func NewDriverAssignedEvent(r *Request) *DriverAssignedEvent {
	e := &DriverAssignedEvent{RequestEvent: newRequestEvent(EventTypeDriverAssigned, r)}
	if r.DriverID != nil {
		e.DriverID = *r.DriverID
	}
	return e
}

// RequestPickedUpEvent is emitted when the driver collects the goods
type RequestPickedUpEvent struct {
	RequestEvent
}

// NewRequestPickedUpEvent creates a new RequestPickedUpEvent
func NewRequestPickedUpEvent(r *Request) *RequestPickedUpEvent {
	return &RequestPickedUpEvent{RequestEvent: newRequestEvent(EventTypeRequestPickedUp, r)}
}

// RequestDeliveredEvent is emitted when the goods arrive at the requester
type RequestDeliveredEvent struct {
	RequestEvent
}

// NewRequestDeliveredEvent creates a new RequestDeliveredEvent
func NewRequestDeliveredEvent(r *Request) *RequestDeliveredEvent {
	return &RequestDeliveredEvent{RequestEvent: newRequestEvent(EventTypeRequestDelivered, r)}
}

// RequestCompletedEvent is emitted when the requester confirms reception
// and the received quantity is credited to its stock.
type RequestCompletedEvent struct {
	RequestEvent
	ReceiptNumber    string `json:"receipt_number"`
	ReceivedQuantity int64  `json:"received_quantity"`
}

// NewRequestCompletedEvent creates a new RequestCompletedEvent
func NewRequestCompletedEvent(r *Request) *RequestCompletedEvent {
	return &RequestCompletedEvent{
		RequestEvent:     newRequestEvent(EventTypeRequestCompleted, r),
		ReceiptNumber:    r.ReceiptNumber,
		ReceivedQuantity: r.ReceivedQuantity(),
	}
}

// DiscrepancyResolvedEvent is emitted when the inventory audit closes
type DiscrepancyResolvedEvent struct {
	RequestEvent
	AuditStatus AuditStatus `json:"audit_status"`
	Note        string      `json:"note"`
}

// NewDiscrepancyResolvedEvent creates a new DiscrepancyResolvedEvent
func NewDiscrepancyResolvedEvent(r *Request) *DiscrepancyResolvedEvent {
	return &DiscrepancyResolvedEvent{
		RequestEvent: newRequestEvent(EventTypeDiscrepancyResolved, r),
		AuditStatus:  r.InventoryStatus,
		Note:         r.InventoryNote,
	}
}
