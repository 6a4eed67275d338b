package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// StockEntryRepository defines the interface for stock entry persistence
type StockEntryRepository interface {
	// FindByID finds a stock entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockEntry, error)

	// FindByBranchAndProduct finds the entry for a branch-product pair.
	// Returns shared.ErrNotFound when no entry exists (meaning zero stock).
	FindByBranchAndProduct(ctx context.Context, branchID uuid.UUID, productCode string) (*StockEntry, error)

	// FindByBranch finds all entries for a branch
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]StockEntry, error)

	// FindByProduct finds all entries for a product across branches
	FindByProduct(ctx context.Context, productCode string) ([]StockEntry, error)

	// FindAll finds all entries matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]StockEntry, error)

	// Save creates or updates a stock entry
	Save(ctx context.Context, entry *StockEntry) error

	// DeleteByBranchAndProduct removes an entry; future reads return zero
	DeleteByBranchAndProduct(ctx context.Context, branchID uuid.UUID, productCode string) error

	// Count counts entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
