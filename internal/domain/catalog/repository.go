package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// BranchRepository defines the interface for branch persistence
type BranchRepository interface {
	// FindByID finds a branch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)

	// FindAll finds all branches matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Branch, error)

	// Save creates or updates a branch
	Save(ctx context.Context, branch *Branch) error

	// Delete deletes a branch
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts branches matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its business key
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindByBarcode finds a product by barcode
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// ExistsByCode checks whether a product with the code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// DeleteByCode deletes a product by its business key
	DeleteByCode(ctx context.Context, code string) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
