package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// RequestRepository defines the interface for transfer request persistence
type RequestRepository interface {
	// FindByID finds a request by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// FindAll finds all requests matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Request, error)

	// FindByRequester finds all requests submitted by a branch
	FindByRequester(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]Request, error)

	// FindByTarget finds all requests targeting a branch as donor
	FindByTarget(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]Request, error)

	// FindByDriver finds all requests assigned to a driver
	FindByDriver(ctx context.Context, driverID uuid.UUID, filter shared.Filter) ([]Request, error)

	// FindByStatus finds all requests in any of the given statuses
	FindByStatus(ctx context.Context, statuses []Status, filter shared.Filter) ([]Request, error)

	// FindOverduePending finds PENDING requests whose deadline has passed
	FindOverduePending(ctx context.Context, now time.Time) ([]Request, error)

	// FindPendingAudit finds requests flagged for discrepancy audit
	FindPendingAudit(ctx context.Context, filter shared.Filter) ([]Request, error)

	// HasActiveRequest reports whether the requester already has an active
	// request with the target branch for the product
	HasActiveRequest(ctx context.Context, requesterBranchID, targetBranchID uuid.UUID, productCode string) (bool, error)

	// Save creates or updates a request
	Save(ctx context.Context, request *Request) error

	// SaveWithLock saves with optimistic locking (version compare-and-set).
	// Returns shared.ErrConcurrencyConflict when another writer won.
	SaveWithLock(ctx context.Context, request *Request) error

	// Delete hard-removes a request (administrative pruning)
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts requests matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus returns request counts grouped by status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
