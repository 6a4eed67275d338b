package inventory

import (
	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// Event types for the inventory domain
const (
	EventTypeStockAdjusted = "inventory.stock_adjusted"
)

// StockAdjustedEvent is emitted when a stock entry quantity changes through
// a signed delta. Requested and Applied differ when the zero floor clamps
// the adjustment.
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	BranchID    uuid.UUID `json:"branch_id"`
	ProductCode string    `json:"product_code"`
	Requested   int64     `json:"requested"`
	Applied     int64     `json:"applied"`
	NewQuantity int64     `json:"new_quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(entry *StockEntry, requested, applied int64) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, "StockEntry", entry.ID),
		BranchID:        entry.BranchID,
		ProductCode:     entry.ProductCode,
		Requested:       requested,
		Applied:         applied,
		NewQuantity:     entry.Quantity,
	}
}
