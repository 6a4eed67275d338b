package shortage

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// ReportRepository defines the interface for shortage report persistence
type ReportRepository interface {
	// FindByID finds a report by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Report, error)

	// FindAll finds all reports matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Report, error)

	// FindOpen finds all unresolved reports
	FindOpen(ctx context.Context, filter shared.Filter) ([]Report, error)

	// FindByRequester finds all reports raised by a branch
	FindByRequester(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]Report, error)

	// Save creates or updates a report
	Save(ctx context.Context, report *Report) error

	// Count counts reports matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
