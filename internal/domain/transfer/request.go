package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a transfer request
type Status string

const (
	StatusPending      Status = "PENDING"      // Waiting for donor branch response
	StatusApproved     Status = "APPROVED"     // Legacy intermediate; the happy path goes straight to DISTRIBUTION
	StatusExpired      Status = "EXPIRED"      // Approval window ran out
	StatusRejected     Status = "REJECTED"     // Donor branch rejected
	StatusCancelled    Status = "CANCELLED"    // Requester cancelled while pending
	StatusDistribution Status = "DISTRIBUTION" // Approved, handed to the distribution center
	StatusAssigned     Status = "ASSIGNED"     // Driver assigned, waiting for pickup
	StatusPickedUp     Status = "PICKED_UP"    // In transit
	StatusDelivered    Status = "DELIVERED"    // At the requesting branch, pending confirmation
	StatusCompleted    Status = "COMPLETED"    // Requester confirmed receipt
)

// IsTerminal reports whether no further transition is permitted
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the request still ties up the donor branch.
// Active requests block the resolver from re-offering the same donor for
// the same requester-product pair.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDistribution, StatusAssigned, StatusPickedUp:
		return true
	}
	return false
}

// ActiveStatuses returns the statuses considered active for donor exclusion
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusDistribution, StatusAssigned, StatusPickedUp}
}

// AuditStatus represents the discrepancy audit state of a request whose
// issued quantity fell short of the requested quantity.
type AuditStatus string

const (
	AuditNone             AuditStatus = ""                  // No audit needed
	AuditPending          AuditStatus = "PENDING_AUDIT"     // Shortfall awaiting review
	AuditItemFound        AuditStatus = "ITEM_FOUND"        // Paperwork/picking error, item exists
	AuditConfirmedDeficit AuditStatus = "CONFIRMED_DEFICIT" // Real stock loss confirmed
)

// Request is the central aggregate: one line-item transfer between a
// requesting branch and the donor branch currently targeted to fulfill it.
// Stock is reserved at the donor when the request is created, and released
// or consumed by the terminal transitions.
type Request struct {
	shared.BaseAggregateRoot
	RequesterBranchID uuid.UUID
	TargetBranchID    uuid.UUID
	ProductCode       string

	RequestedQuantity int64
	IssuedQuantity    *int64

	Status    Status
	ExpiresAt time.Time

	RespondedAt *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time

	DriverID        *uuid.UUID
	IssueNumber     string
	ReceiptNumber   string
	RejectionReason string

	// Every branch ever selected as donor for this request, in order.
	// Prevents re-offering a branch that already rejected or timed out.
	AttemptedBranchIDs []uuid.UUID

	InventoryStatus AuditStatus
	InventoryNote   string

	ArchivedByRequester bool
}

// NewRequest creates a request in PENDING against the selected donor and
// stamps the approval deadline. The caller reserves donor stock alongside.
func NewRequest(requesterBranchID, targetBranchID uuid.UUID, productCode string, quantity int64, window time.Duration) (*Request, error) {
	if requesterBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Requester branch ID cannot be empty")
	}
	if targetBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Target branch ID cannot be empty")
	}
	if requesterBranchID == targetBranchID {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Requester and target branch cannot be the same")
	}
	if productCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	r := &Request{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		RequesterBranchID:  requesterBranchID,
		TargetBranchID:     targetBranchID,
		ProductCode:        productCode,
		RequestedQuantity:  quantity,
		Status:             StatusPending,
		ExpiresAt:          time.Now().Add(window),
		AttemptedBranchIDs: []uuid.UUID{targetBranchID},
	}
	r.AddDomainEvent(NewRequestCreatedEvent(r))
	return r, nil
}

// ensureStatus rejects the transition with a state-conflict error when the
// request is not in the required predecessor state. Violating calls must
// produce no side effect.
func (r *Request) ensureStatus(required Status) error {
	if r.Status != required {
		return shared.NewDomainError("INVALID_STATE",
			"Operation requires status "+string(required)+", current status is "+string(r.Status))
	}
	return nil
}

func (r *Request) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// UpdateQuantity changes the requested quantity while the request is still
// pending. The stock reservation made at creation is left untouched; the
// donor reconciles the difference at approval or rejection.
func (r *Request) UpdateQuantity(quantity int64) error {
	if err := r.ensureStatus(StatusPending); err != nil {
		return err
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	r.RequestedQuantity = quantity
	r.touch()
	return nil
}

// Approve records the donor's outbound document and issued quantity and
// moves the request into the distribution pipeline. A shortfall flags the
// request for inventory audit; the caller credits the shortfall back to
// the donor's stock.
func (r *Request) Approve(issueNumber string, issuedQuantity int64) error {
	if err := r.ensureStatus(StatusPending); err != nil {
		return err
	}
	if issueNumber == "" {
		return shared.NewDomainError("INVALID_ISSUE_NUMBER", "Issue number is required")
	}
	if issuedQuantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Issued quantity must be positive")
	}
	if issuedQuantity > r.RequestedQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Issued quantity cannot exceed requested quantity")
	}

	now := time.Now()
	r.Status = StatusDistribution
	r.IssueNumber = issueNumber
	r.IssuedQuantity = &issuedQuantity
	r.RespondedAt = &now
	if issuedQuantity < r.RequestedQuantity {
		r.InventoryStatus = AuditPending
	}
	r.touch()
	r.AddDomainEvent(NewRequestApprovedEvent(r))
	return nil
}

// Shortfall returns the difference between requested and issued quantity,
// or zero before approval.
func (r *Request) Shortfall() int64 {
	if r.IssuedQuantity == nil {
		return 0
	}
	return r.RequestedQuantity - *r.IssuedQuantity
}

// Reject records the donor's refusal. The caller releases the full
// reserved quantity back to the donor's stock. Terminal: the requester
// must issue a new request to retry with a different donor.
func (r *Request) Reject(reason string) error {
	if err := r.ensureStatus(StatusPending); err != nil {
		return err
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.RespondedAt = &now
	r.touch()
	r.AddDomainEvent(NewRequestRejectedEvent(r))
	return nil
}

// Cancel withdraws a pending request on behalf of the requester. The
// caller releases the reserved quantity back to the donor's stock.
func (r *Request) Cancel() error {
	if err := r.ensureStatus(StatusPending); err != nil {
		return err
	}

	r.Status = StatusCancelled
	r.touch()
	r.AddDomainEvent(NewRequestCancelledEvent(r))
	return nil
}

// IsOverdue reports whether the approval deadline has passed at the given
// instant.
func (r *Request) IsOverdue(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Expire transitions an overdue pending request to EXPIRED. The status
// guard makes repeated evaluation a no-op: only PENDING requests expire.
// The caller releases the reserved quantity back to the donor's stock.
func (r *Request) Expire(now time.Time) error {
	if err := r.ensureStatus(StatusPending); err != nil {
		return err
	}
	if !r.IsOverdue(now) {
		return shared.NewDomainError("NOT_EXPIRED", "Request deadline has not passed")
	}

	r.Status = StatusExpired
	r.touch()
	r.AddDomainEvent(NewRequestExpiredEvent(r))
	return nil
}

// TimeRemaining returns the time left in the approval window at the given
// instant, floored at zero.
func (r *Request) TimeRemaining(now time.Time) time.Duration {
	remaining := r.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AssignDriver hands the request to a delivery driver
func (r *Request) AssignDriver(driverID uuid.UUID) error {
	if err := r.ensureStatus(StatusDistribution); err != nil {
		return err
	}
	if driverID == uuid.Nil {
		return shared.NewDomainError("INVALID_DRIVER", "Driver ID cannot be empty")
	}

	r.Status = StatusAssigned
	r.DriverID = &driverID
	r.touch()
	r.AddDomainEvent(NewDriverAssignedEvent(r))
	return nil
}

// ConfirmPickup records the driver collecting the goods at the donor
func (r *Request) ConfirmPickup() error {
	if err := r.ensureStatus(StatusAssigned); err != nil {
		return err
	}

	now := time.Now()
	r.Status = StatusPickedUp
	r.PickedUpAt = &now
	r.touch()
	r.AddDomainEvent(NewRequestPickedUpEvent(r))
	return nil
}

// CompleteDelivery records arrival at the requesting branch
func (r *Request) CompleteDelivery() error {
	if err := r.ensureStatus(StatusPickedUp); err != nil {
		return err
	}

	now := time.Now()
	r.Status = StatusDelivered
	r.DeliveredAt = &now
	r.touch()
	r.AddDomainEvent(NewRequestDeliveredEvent(r))
	return nil
}

// ConfirmReception closes the request. The caller credits the received
// quantity to the requester's stock; stock only becomes visible at the
// requester on this final confirmation.
func (r *Request) ConfirmReception(receiptNumber string) error {
	if err := r.ensureStatus(StatusDelivered); err != nil {
		return err
	}
	if receiptNumber == "" {
		return shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number is required")
	}

	r.Status = StatusCompleted
	r.ReceiptNumber = receiptNumber
	r.touch()
	r.AddDomainEvent(NewRequestCompletedEvent(r))
	return nil
}

// ReceivedQuantity returns the quantity that actually moves to the
// requester on completion.
func (r *Request) ReceivedQuantity() int64 {
	if r.IssuedQuantity != nil {
		return *r.IssuedQuantity
	}
	return r.RequestedQuantity
}

// MarkItemFound closes the discrepancy audit as a paperwork or picking
// error. No ledger change: the shortfall was already credited back at
// approval time.
func (r *Request) MarkItemFound(note string) error {
	if r.InventoryStatus != AuditPending {
		return shared.NewDomainError("INVALID_STATE", "Request is not pending inventory audit")
	}

	r.InventoryStatus = AuditItemFound
	r.InventoryNote = note
	r.touch()
	r.AddDomainEvent(NewDiscrepancyResolvedEvent(r))
	return nil
}

// ConfirmDeficit closes the discrepancy audit as a confirmed real-world
// stock loss. Terminal annotation, no further ledger change.
func (r *Request) ConfirmDeficit(note string) error {
	if r.InventoryStatus != AuditPending {
		return shared.NewDomainError("INVALID_STATE", "Request is not pending inventory audit")
	}

	r.InventoryStatus = AuditConfirmedDeficit
	r.InventoryNote = note
	r.touch()
	r.AddDomainEvent(NewDiscrepancyResolvedEvent(r))
	return nil
}

// Archive hides the request from the requester's dashboard. Cosmetic only.
func (r *Request) Archive() {
	r.ArchivedByRequester = true
	r.touch()
}

// CanDelete reports whether administrative hard removal is permitted.
// Only failed terminals may be pruned; completed requests stay as history.
func (r *Request) CanDelete() bool {
	switch r.Status {
	case StatusCancelled, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// HasAttempted reports whether a branch was ever selected as donor
func (r *Request) HasAttempted(branchID uuid.UUID) bool {
	for _, id := range r.AttemptedBranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}
