package shortage

import (
	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// Event types for the shortage domain
const (
	EventTypeShortageReported = "shortage.reported"
	EventTypeShortageResolved = "shortage.resolved"
)

// ShortageReportedEvent is emitted when a network-wide shortage is recorded
type ShortageReportedEvent struct {
	shared.BaseDomainEvent
	RequesterBranchID uuid.UUID `json:"requester_branch_id"`
	ProductCode       string    `json:"product_code"`
	RequestedQuantity int64     `json:"requested_quantity"`
}

// NewShortageReportedEvent creates a new ShortageReportedEvent
func NewShortageReportedEvent(r *Report) *ShortageReportedEvent {
	return &ShortageReportedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeShortageReported, "ShortageReport", r.ID),
		RequesterBranchID: r.RequesterBranchID,
		ProductCode:       r.ProductCode,
		RequestedQuantity: r.RequestedQuantity,
	}
}

// ShortageResolvedEvent is emitted when the shortage manager secures stock
type ShortageResolvedEvent struct {
	shared.BaseDomainEvent
	RequesterBranchID uuid.UUID `json:"requester_branch_id"`
	ProductCode       string    `json:"product_code"`
	ProvidedQuantity  int64     `json:"provided_quantity"`
}

// NewShortageResolvedEvent creates a new ShortageResolvedEvent
func NewShortageResolvedEvent(r *Report) *ShortageResolvedEvent {
	e := &ShortageResolvedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeShortageResolved, "ShortageReport", r.ID),
		RequesterBranchID: r.RequesterBranchID,
		ProductCode:       r.ProductCode,
	}
	if r.ProvidedQuantity != nil {
		e.ProvidedQuantity = *r.ProvidedQuantity
	}
	return e
}
