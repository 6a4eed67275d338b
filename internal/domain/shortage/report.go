package shortage

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a shortage report
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusResolved Status = "RESOLVED"
)

// Report is a standing backlog item recorded when no branch in the network
// can fulfill a requested quantity. Its lifecycle is independent of any
// transfer request: resolving a shortage signals the requester to re-request
// through the normal flow, it does not create a request.
type Report struct {
	shared.BaseAggregateRoot
	RequesterBranchID uuid.UUID
	ProductCode       string
	RequestedQuantity int64
	ProvidedQuantity  *int64
	Status            Status
	ResolvedAt        *time.Time

	ArchivedByRequester bool
}

// NewReport creates an open shortage report
func NewReport(requesterBranchID uuid.UUID, productCode string, requestedQuantity int64) (*Report, error) {
	if requesterBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Requester branch ID cannot be empty")
	}
	if productCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if requestedQuantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	r := &Report{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequesterBranchID: requesterBranchID,
		ProductCode:       productCode,
		RequestedQuantity: requestedQuantity,
		Status:            StatusOpen,
	}
	r.AddDomainEvent(NewShortageReportedEvent(r))
	return r, nil
}

// Resolve marks the shortage as obtainable with the secured quantity
func (r *Report) Resolve(providedQuantity int64) error {
	if r.Status != StatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Shortage report is already resolved")
	}
	if providedQuantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Provided quantity must be positive")
	}

	now := time.Now()
	r.Status = StatusResolved
	r.ProvidedQuantity = &providedQuantity
	r.ResolvedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	r.AddDomainEvent(NewShortageResolvedEvent(r))
	return nil
}

// Archive hides the report from the requester's dashboard. Cosmetic only.
func (r *Report) Archive() {
	r.ArchivedByRequester = true
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
