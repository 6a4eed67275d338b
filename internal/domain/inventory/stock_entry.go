package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// StockEntry represents the on-hand quantity of one product at one branch.
// The composite identifier is BranchID + ProductCode; absence of an entry
// means zero stock. Quantity is mutated through signed deltas issued by the
// transfer engine, or overwritten directly by catalogue admins.
type StockEntry struct {
	shared.BaseAggregateRoot
	BranchID    uuid.UUID
	ProductCode string
	Quantity    int64
}

// NewStockEntry creates a new stock entry
func NewStockEntry(branchID uuid.UUID, productCode string, quantity int64) (*StockEntry, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if productCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	return &StockEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		ProductCode:       productCode,
		Quantity:          quantity,
	}, nil
}

// Adjust applies a signed delta to the quantity, flooring at zero.
// It returns the delta actually applied; a release that would drive the
// quantity negative is clamped rather than rejected.
func (s *StockEntry) Adjust(delta int64) int64 {
	before := s.Quantity
	after := before + delta
	if after < 0 {
		after = 0
	}
	s.Quantity = after
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	applied := after - before
	s.AddDomainEvent(NewStockAdjustedEvent(s, delta, applied))
	return applied
}

// WasClamped reports whether applying delta to the current quantity would
// hit the zero floor.
func (s *StockEntry) WasClamped(delta int64) bool {
	return s.Quantity+delta < 0
}

// Set overwrites the quantity with an absolute value (admin operation)
func (s *StockEntry) Set(quantity int64) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	s.Quantity = quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// CanFulfill reports whether the entry holds at least the requested quantity
func (s *StockEntry) CanFulfill(quantity int64) bool {
	return s.Quantity >= quantity
}
