package transfer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/inventory"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/transfer"
)

// ExpirationService handles automatic expiry of pending requests whose
// approval window has lapsed
type ExpirationService struct {
	requestRepo transfer.RequestRepository
	stockRepo   inventory.StockEntryRepository
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewExpirationService creates a new ExpirationService
func NewExpirationService(
	requestRepo transfer.RequestRepository,
	stockRepo inventory.StockEntryRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ExpirationService {
	return &ExpirationService{
		requestRepo: requestRepo,
		stockRepo:   stockRepo,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// SetEventBus sets the event publisher when it is not available at
// construction time
func (s *ExpirationService) SetEventBus(eventBus shared.EventPublisher) {
	s.eventBus = eventBus
}

// ExpiredRequestStats contains statistics about one expiry sweep
type ExpiredRequestStats struct {
	TotalOverdue   int       `json:"total_overdue"`
	SuccessExpired int       `json:"success_expired"`
	SkippedRaced   int       `json:"skipped_raced"`
	FailedExpiries int       `json:"failed_expiries"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// ExpireOverdue finds pending requests past their deadline, expires each
// and releases its reservation back to the donor. The status guard plus
// optimistic locking make the sweep safe to run concurrently: a request
// another writer already moved is skipped, not failed.
func (s *ExpirationService) ExpireOverdue(ctx context.Context) (*ExpiredRequestStats, error) {
	now := time.Now()
	stats := &ExpiredRequestStats{
		ProcessedAt: now,
	}

	overdue, err := s.requestRepo.FindOverduePending(ctx, now)
	if err != nil {
		s.logger.Error("Failed to find overdue requests", zap.Error(err))
		return nil, err
	}

	stats.TotalOverdue = len(overdue)
	if stats.TotalOverdue == 0 {
		s.logger.Debug("No overdue pending requests found")
		return stats, nil
	}

	s.logger.Info("Found overdue pending requests",
		zap.Int("count", stats.TotalOverdue),
	)

	for i := range overdue {
		request := &overdue[i]
		if err := s.expireOne(ctx, request, now); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				stats.SkippedRaced++
				continue
			}
			s.logger.Error("Failed to expire overdue request",
				zap.String("request_id", request.ID.String()),
				zap.String("target_branch_id", request.TargetBranchID.String()),
				zap.String("product_code", request.ProductCode),
				zap.Error(err),
			)
			stats.FailedExpiries++
			continue
		}
		stats.SuccessExpired++
	}

	s.logger.Info("Completed expiry sweep",
		zap.Int("total", stats.TotalOverdue),
		zap.Int("expired", stats.SuccessExpired),
		zap.Int("skipped", stats.SkippedRaced),
		zap.Int("failed", stats.FailedExpiries),
	)

	return stats, nil
}

func (s *ExpirationService) expireOne(ctx context.Context, request *transfer.Request, now time.Time) error {
	if err := request.Expire(now); err != nil {
		// Moved out of PENDING between the query and now
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.ErrInvalidState.Code {
			return shared.ErrConcurrencyConflict
		}
		return err
	}

	// Save first: losing the version race here means another node expired
	// it and released the stock already
	if err := s.requestRepo.SaveWithLock(ctx, request); err != nil {
		return err
	}

	if err := s.releaseReservation(ctx, request); err != nil {
		return err
	}

	s.publishEvents(ctx, request)

	s.logger.Info("Transfer request expired",
		zap.String("request_id", request.ID.String()),
		zap.String("requester_branch_id", request.RequesterBranchID.String()),
		zap.String("target_branch_id", request.TargetBranchID.String()),
		zap.String("product_code", request.ProductCode),
		zap.Int64("quantity", request.RequestedQuantity),
	)
	return nil
}

func (s *ExpirationService) releaseReservation(ctx context.Context, request *transfer.Request) error {
	entry, err := s.stockRepo.FindByBranchAndProduct(ctx, request.TargetBranchID, request.ProductCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		entry, err = inventory.NewStockEntry(request.TargetBranchID, request.ProductCode, 0)
		if err != nil {
			return err
		}
	}
	entry.Adjust(request.RequestedQuantity)
	return s.stockRepo.Save(ctx, entry)
}

func (s *ExpirationService) publishEvents(ctx context.Context, request *transfer.Request) {
	events := request.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if s.eventBus == nil {
		request.ClearDomainEvents()
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish expiry events",
			zap.String("request_id", request.ID.String()),
			zap.Error(err),
		)
	}
	request.ClearDomainEvents()
}
