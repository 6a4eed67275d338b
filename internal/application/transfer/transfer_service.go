package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/inventory"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shortage"
	"github.com/pharmanet/backend/internal/domain/transfer"
)

// Service orchestrates the transfer request lifecycle: donor selection,
// stock reservation, approvals, delivery tracking and the discrepancy
// audit trail.
type Service struct {
	requestRepo   transfer.RequestRepository
	stockRepo     inventory.StockEntryRepository
	shortageRepo  shortage.ReportRepository
	resolver      *transfer.BranchResolver
	eventBus      shared.EventPublisher
	logger        *zap.Logger
	pendingWindow time.Duration
}

// NewService creates a new transfer Service
func NewService(
	requestRepo transfer.RequestRepository,
	stockRepo inventory.StockEntryRepository,
	shortageRepo shortage.ReportRepository,
	resolver *transfer.BranchResolver,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
	pendingWindow time.Duration,
) *Service {
	return &Service{
		requestRepo:   requestRepo,
		stockRepo:     stockRepo,
		shortageRepo:  shortageRepo,
		resolver:      resolver,
		eventBus:      eventBus,
		logger:        logger,
		pendingWindow: pendingWindow,
	}
}

// SetEventBus sets the event publisher when it is not available at
// construction time
func (s *Service) SetEventBus(eventBus shared.EventPublisher) {
	s.eventBus = eventBus
}

// CreateRequests submits a batch of line items for a requesting branch.
// Each item is resolved independently: the nearest eligible donor gets a
// PENDING request with its stock reserved up front, and items no branch
// can fulfill open a shortage report instead. One item failing to resolve
// never aborts the rest of the batch.
func (s *Service) CreateRequests(ctx context.Context, requesterBranchID uuid.UUID, items []LineItem) ([]CreateResult, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "At least one line item is required")
	}

	results := make([]CreateResult, 0, len(items))
	for _, item := range items {
		result, err := s.createOne(ctx, requesterBranchID, item)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *Service) createOne(ctx context.Context, requesterBranchID uuid.UUID, item LineItem) (*CreateResult, error) {
	result := &CreateResult{
		ProductCode: item.ProductCode,
		Quantity:    item.Quantity,
	}

	donor, err := s.resolver.Resolve(ctx, requesterBranchID, item.ProductCode, item.Quantity, nil)
	if err != nil {
		if !errors.Is(err, shared.ErrNoEligibleDonor) {
			return nil, err
		}
		report, err := s.openShortageReport(ctx, requesterBranchID, item)
		if err != nil {
			return nil, err
		}
		result.Outcome = OutcomeShortageReported
		result.ShortageReportID = &report.ID
		return result, nil
	}

	request, err := transfer.NewRequest(requesterBranchID, donor.ID, item.ProductCode, item.Quantity, s.pendingWindow)
	if err != nil {
		return nil, err
	}

	// Reserve before persisting the request so a visible request always
	// has its stock held
	if err := s.debitStock(ctx, donor.ID, item.ProductCode, item.Quantity); err != nil {
		return nil, err
	}

	if err := s.requestRepo.Save(ctx, request); err != nil {
		// Roll the reservation back so stock is not stranded
		if creditErr := s.creditStock(ctx, donor.ID, item.ProductCode, item.Quantity); creditErr != nil {
			s.logger.Error("Failed to roll back reservation after save failure",
				zap.String("branch_id", donor.ID.String()),
				zap.String("product_code", item.ProductCode),
				zap.Int64("quantity", item.Quantity),
				zap.Error(creditErr),
			)
		}
		return nil, err
	}

	s.publishEvents(ctx, request)

	s.logger.Info("Transfer request created",
		zap.String("request_id", request.ID.String()),
		zap.String("requester_branch_id", requesterBranchID.String()),
		zap.String("target_branch_id", donor.ID.String()),
		zap.String("product_code", item.ProductCode),
		zap.Int64("quantity", item.Quantity),
	)

	result.Outcome = OutcomeRequestCreated
	result.RequestID = &request.ID
	result.TargetBranchID = &donor.ID
	return result, nil
}

func (s *Service) openShortageReport(ctx context.Context, requesterBranchID uuid.UUID, item LineItem) (*shortage.Report, error) {
	report, err := shortage.NewReport(requesterBranchID, item.ProductCode, item.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.shortageRepo.Save(ctx, report); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, report)

	s.logger.Warn("Network-wide shortage reported",
		zap.String("report_id", report.ID.String()),
		zap.String("requester_branch_id", requesterBranchID.String()),
		zap.String("product_code", item.ProductCode),
		zap.Int64("quantity", item.Quantity),
	)
	return report, nil
}

// GetRequest returns a single request by ID
func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*RequestView, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewRequestView(request)
	return &view, nil
}

// ListByRequester returns requests submitted by a branch
func (s *Service) ListByRequester(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]RequestView, error) {
	requests, err := s.requestRepo.FindByRequester(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	return toViews(requests), nil
}

// ListByTarget returns requests where the branch is the donor
func (s *Service) ListByTarget(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]RequestView, error) {
	requests, err := s.requestRepo.FindByTarget(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	return toViews(requests), nil
}

// ListByDriver returns requests assigned to a driver
func (s *Service) ListByDriver(ctx context.Context, driverID uuid.UUID, filter shared.Filter) ([]RequestView, error) {
	requests, err := s.requestRepo.FindByDriver(ctx, driverID, filter)
	if err != nil {
		return nil, err
	}
	return toViews(requests), nil
}

// ListByStatus returns requests in any of the given statuses
func (s *Service) ListByStatus(ctx context.Context, statuses []transfer.Status, filter shared.Filter) ([]RequestView, error) {
	requests, err := s.requestRepo.FindByStatus(ctx, statuses, filter)
	if err != nil {
		return nil, err
	}
	return toViews(requests), nil
}

// ListPendingAudit returns requests awaiting discrepancy review
func (s *Service) ListPendingAudit(ctx context.Context, filter shared.Filter) ([]RequestView, error) {
	requests, err := s.requestRepo.FindPendingAudit(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toViews(requests), nil
}

// UpdateQuantity changes the requested quantity of a pending request.
// The original reservation is intentionally left untouched; the donor
// reconciles the difference when approving or rejecting.
func (s *Service) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int64) error {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := request.UpdateQuantity(quantity); err != nil {
		return err
	}
	if err := s.requestRepo.SaveWithLock(ctx, request); err != nil {
		return err
	}
	s.publishEvents(ctx, request)
	return nil
}

// Approve records the donor's acceptance with the issue slip number and
// the quantity actually issued. When less than requested ships, the
// unshipped remainder goes back to the donor's shelf immediately and the
// request is flagged for discrepancy audit.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, issueNumber string, issuedQuantity int64) error {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := request.Approve(issueNumber, issuedQuantity); err != nil {
		return err
	}

	// Save first: losing the version race means another caller already
	// closed the request and reconciled the reservation
	if err := s.requestRepo.SaveWithLock(ctx, request); err != nil {
		return err
	}

	if shortfall := request.Shortfall(); shortfall > 0 {
		if err := s.creditStock(ctx, request.TargetBranchID, request.ProductCode, shortfall); err != nil {
			return err
		}
		s.logger.Info("Partial approval, shortfall credited back to donor",
			zap.String("request_id", request.ID.String()),
			zap.Int64("shortfall", shortfall),
		)
	}
	s.publishEvents(ctx, request)
	return nil
}

// Reject records the donor's refusal and releases the full reservation
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := request.Reject(reason); err != nil {
		return err
	}
	// Save first: a lost version race means the reservation was already
	// released by whoever won
	if err := s.requestRepo.SaveWithLock(ctx, request); err != nil {
		return err
	}
	if err := s.creditStock(ctx, request.TargetBranchID, request.ProductCode, request.RequestedQuantity); err != nil {
		return err
	}
	s.publishEvents(ctx, request)
	return nil
}

// Cancel withdraws a pending request and releases the full reservation
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := request.Cancel(); err != nil {
		return err
	}
	// Save first so a lost version race never releases the same
	// reservation twice
	if err := s.requestRepo.SaveWithLock(ctx, request); err != nil {
		return err
	}
	if err := s.creditStock(ctx, request.TargetBranchID, request.ProductCode, request.RequestedQuantity); err != nil {
		return err
	}
	s.publishEvents(ctx, request)
	return nil
}

// Delete removes a closed request. Only cancelled, rejected or expired
// requests may be deleted; everything else stays for the audit trail.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !request.CanDelete() {
		return shared.NewDomainError("DELETE_FORBIDDEN", "Only cancelled, rejected or expired requests can be deleted")
	}
	return s.requestRepo.Delete(ctx, id)
}

// AssignDriver hands an approved request to a delivery driver
func (s *Service) AssignDriver(ctx context.Context, id, driverID uuid.UUID) error {
	return s.transition(ctx, id, func(r *transfer.Request) error {
		return r.AssignDriver(driverID)
	})
}

// ConfirmPickup records the driver collecting the goods at the donor
func (s *Service) ConfirmPickup(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, func(r *transfer.Request) error {
		return r.ConfirmPickup()
	})
}

// CompleteDelivery records arrival at the requesting branch
func (s *Service) CompleteDelivery(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, func(r *transfer.Request) error {
		return r.CompleteDelivery()
	})
}

// ConfirmReception closes the request and credits the received quantity
// to the requester's stock. This is the only point where transferred
// stock becomes visible at the requesting branch.
func (s *Service) ConfirmReception(ctx context.Context, id uuid.UUID, receiptNumber string) error {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := request.ConfirmReception(receiptNumber); err != nil {
		return err
	}
	// Save first so a lost version race never credits the requester twice
	if err := s.requestRepo.SaveWithLock(ctx, request); err != nil {
		return err
	}
	if err := s.creditStock(ctx, request.RequesterBranchID, request.ProductCode, request.ReceivedQuantity()); err != nil {
		return err
	}
	s.publishEvents(ctx, request)

	s.logger.Info("Transfer completed",
		zap.String("request_id", request.ID.String()),
		zap.String("requester_branch_id", request.RequesterBranchID.String()),
		zap.Int64("received_quantity", request.ReceivedQuantity()),
	)
	return nil
}

// Archive hides a closed request from the requester's default view
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	request.Archive()
	return s.requestRepo.Save(ctx, request)
}

// MarkItemFound resolves a discrepancy audit as a paperwork or picking
// error, leaving the ledger untouched
func (s *Service) MarkItemFound(ctx context.Context, id uuid.UUID, note string) error {
	return s.transition(ctx, id, func(r *transfer.Request) error {
		return r.MarkItemFound(note)
	})
}

// ConfirmDeficit resolves a discrepancy audit as a genuine stock deficit
// at the donor
func (s *Service) ConfirmDeficit(ctx context.Context, id uuid.UUID, note string) error {
	return s.transition(ctx, id, func(r *transfer.Request) error {
		return r.ConfirmDeficit(note)
	})
}

// transition applies a guarded state change and persists it with
// optimistic locking
func (s *Service) transition(ctx context.Context, id uuid.UUID, apply func(*transfer.Request) error) error {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := apply(request); err != nil {
		return err
	}
	if err := s.requestRepo.SaveWithLock(ctx, request); err != nil {
		return err
	}
	s.publishEvents(ctx, request)
	return nil
}

// debitStock reserves quantity at a branch, clamping at zero. A clamp
// means the ledger drifted between resolution and reservation; it is
// logged and the request proceeds with whatever was actually held.
func (s *Service) debitStock(ctx context.Context, branchID uuid.UUID, productCode string, quantity int64) error {
	entry, err := s.stockRepo.FindByBranchAndProduct(ctx, branchID, productCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		entry, err = inventory.NewStockEntry(branchID, productCode, 0)
		if err != nil {
			return err
		}
	}

	if entry.WasClamped(-quantity) {
		s.logger.Warn("Stock reservation clamped at zero",
			zap.String("branch_id", branchID.String()),
			zap.String("product_code", productCode),
			zap.Int64("requested", quantity),
			zap.Int64("on_hand", entry.Quantity),
		)
	}
	entry.Adjust(-quantity)
	return s.stockRepo.Save(ctx, entry)
}

// creditStock returns or delivers quantity to a branch, creating the
// ledger entry when the branch has never stocked the product
func (s *Service) creditStock(ctx context.Context, branchID uuid.UUID, productCode string, quantity int64) error {
	entry, err := s.stockRepo.FindByBranchAndProduct(ctx, branchID, productCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		entry, err = inventory.NewStockEntry(branchID, productCode, 0)
		if err != nil {
			return err
		}
	}
	entry.Adjust(quantity)
	return s.stockRepo.Save(ctx, entry)
}

type eventCarrier interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents drains the aggregate's pending events onto the bus.
// Publication failures are logged, not returned: the state change has
// already been persisted.
func (s *Service) publishEvents(ctx context.Context, aggregate eventCarrier) {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if s.eventBus == nil {
		aggregate.ClearDomainEvents()
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
	aggregate.ClearDomainEvents()
}

func toViews(requests []transfer.Request) []RequestView {
	views := make([]RequestView, 0, len(requests))
	for i := range requests {
		views = append(views, NewRequestView(&requests[i]))
	}
	return views
}
